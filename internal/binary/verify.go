package binary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// SignatureSuffix is appended to the artifact URL to locate its detached
// signature.
const SignatureSuffix = ".sig"

// VerifierOptions configures an IntegrityVerifier.
type VerifierOptions struct {
	// SHA256 is the expected hex digest of the archive. Empty skips the check.
	SHA256 string
	// KeyRingPath is an OpenPGP public keyring (armored or binary). Empty
	// skips the signature check.
	KeyRingPath string
	// Downloader fetches the detached signature. Required with KeyRingPath.
	Downloader Downloader
}

// IntegrityVerifier checks archives against an expected digest and a
// detached OpenPGP signature published next to the artifact.
type IntegrityVerifier struct {
	sha256      string
	keyRingPath string
	downloader  Downloader
}

// NewVerifier returns a verifier for opts, or nil when opts enable no check.
func NewVerifier(opts VerifierOptions) (*IntegrityVerifier, error) {
	digest := strings.ToLower(strings.TrimSpace(opts.SHA256))
	keyRing := strings.TrimSpace(opts.KeyRingPath)

	if digest == "" && keyRing == "" {
		return nil, nil
	}

	if digest != "" {
		if b, err := hex.DecodeString(digest); err != nil || len(b) != sha256.Size {
			return nil, fmt.Errorf("invalid sha256 %q: expected %d hex characters", opts.SHA256, sha256.Size*2)
		}
	}

	if keyRing != "" && opts.Downloader == nil {
		return nil, fmt.Errorf("signature verification requires a downloader")
	}

	return &IntegrityVerifier{
		sha256:      digest,
		keyRingPath: keyRing,
		downloader:  opts.Downloader,
	}, nil
}

// Verify runs the configured checks against archivePath. url is the address
// the archive was downloaded from.
func (v *IntegrityVerifier) Verify(ctx context.Context, archivePath, url, token string) error {
	if v.sha256 != "" {
		if err := v.verifySHA256(archivePath); err != nil {
			return &VerificationError{Method: VerificationSHA256, Err: err}
		}
	}

	if v.keyRingPath != "" {
		if err := v.verifyGPG(ctx, archivePath, url, token); err != nil {
			return &VerificationError{Method: VerificationGPG, Err: err}
		}
	}

	return nil
}

func (v *IntegrityVerifier) verifySHA256(archivePath string) error {
	actual, err := calculateSHA256(archivePath)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	if !strings.EqualFold(actual, v.sha256) {
		return fmt.Errorf("checksum mismatch: actual %s, expected %s", actual, v.sha256)
	}
	return nil
}

func (v *IntegrityVerifier) verifyGPG(ctx context.Context, archivePath, url, token string) error {
	keyring, err := loadKeyring(v.keyRingPath)
	if err != nil {
		return err
	}

	sigPath, err := v.downloader.Download(ctx, url+SignatureSuffix, token)
	if err != nil {
		return fmt.Errorf("download signature: %w", err)
	}
	defer os.Remove(sigPath)

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	sigFile, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	// Try armored first, then binary signatures
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, archiveFile, sigFile, nil)
	if err != nil {
		if _, serr := archiveFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind archive: %w", serr)
		}
		if _, serr := sigFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind signature: %w", serr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, archiveFile, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
}

// loadKeyring reads an armored or binary OpenPGP keyring
func loadKeyring(path string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		if _, serr := keyringFile.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", serr)
		}
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
