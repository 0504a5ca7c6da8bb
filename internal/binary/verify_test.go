package binary

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"       //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const archiveContent = "same release archive"

func digestOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// signingFixture generates a throwaway key, writes its armored public key to
// disk and returns the key path and an armored detached signature of content.
func signingFixture(t *testing.T, content string) (keyPath string, signature []byte) {
	t.Helper()

	entity, err := openpgp.NewEntity("same release", "test", "release@example.com", nil)
	require.NoError(t, err)

	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	keyPath = filepath.Join(t.TempDir(), "release.asc")
	require.NoError(t, os.WriteFile(keyPath, pub.Bytes(), 0644))

	var sig bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader([]byte(content)), nil))

	return keyPath, sig.Bytes()
}

func TestNewVerifier(t *testing.T) {
	t.Run("nothing_configured", func(t *testing.T) {
		v, err := NewVerifier(VerifierOptions{})
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("invalid_digest", func(t *testing.T) {
		_, err := NewVerifier(VerifierOptions{SHA256: "abc"})
		assert.Error(t, err)
	})

	t.Run("keyring_without_downloader", func(t *testing.T) {
		_, err := NewVerifier(VerifierOptions{KeyRingPath: "/keys.asc"})
		assert.Error(t, err)
	})

	t.Run("padded_digest", func(t *testing.T) {
		v, err := NewVerifier(VerifierOptions{SHA256: "  " + digestOf("x") + "  "})
		require.NoError(t, err)
		assert.Equal(t, digestOf("x"), v.sha256)
	})
}

func TestVerifySHA256(t *testing.T) {
	archive := writeFile(t, "same.tar.gz", archiveContent)

	tests := []struct {
		name    string
		digest  string
		wantErr bool
	}{
		{name: "match", digest: digestOf(archiveContent)},
		{name: "mismatch", digest: digestOf("something else"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVerifier(VerifierOptions{SHA256: tt.digest})
			require.NoError(t, err)

			err = v.Verify(context.Background(), archive, "https://example.com/same.tar.gz", "")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var verr *VerificationError
			require.True(t, errors.As(err, &verr), "want *VerificationError, got %T", err)
			assert.Equal(t, VerificationSHA256, verr.Method)
			assert.Contains(t, err.Error(), "checksum mismatch")
		})
	}
}

func TestVerifyGPG(t *testing.T) {
	const url = "https://github.com/traiproject/same/releases/download/v1.0.0/same_1.0.0_linux_x86_64.tar.gz"

	keyPath, signature := signingFixture(t, archiveContent)

	t.Run("valid_signature", func(t *testing.T) {
		archive := writeFile(t, "same.tar.gz", archiveContent)
		sigPath := writeFile(t, "same.tar.gz.sig", string(signature))

		dl := &mockDownloader{}
		dl.On("Download", mock.Anything, url+".sig", "tok").Return(sigPath, nil).Once()

		v, err := NewVerifier(VerifierOptions{KeyRingPath: keyPath, Downloader: dl})
		require.NoError(t, err)

		require.NoError(t, v.Verify(context.Background(), archive, url, "tok"))
		dl.AssertExpectations(t)

		_, err = os.Stat(sigPath)
		assert.True(t, os.IsNotExist(err), "signature file should be removed")
	})

	t.Run("tampered_archive", func(t *testing.T) {
		archive := writeFile(t, "same.tar.gz", archiveContent+" tampered")
		sigPath := writeFile(t, "same.tar.gz.sig", string(signature))

		dl := &mockDownloader{}
		dl.On("Download", mock.Anything, url+".sig", "").Return(sigPath, nil)

		v, err := NewVerifier(VerifierOptions{KeyRingPath: keyPath, Downloader: dl})
		require.NoError(t, err)

		err = v.Verify(context.Background(), archive, url, "")
		var verr *VerificationError
		require.True(t, errors.As(err, &verr), "want *VerificationError, got %T", err)
		assert.Equal(t, VerificationGPG, verr.Method)
	})

	t.Run("missing_signature", func(t *testing.T) {
		archive := writeFile(t, "same.tar.gz", archiveContent)
		missing := &DownloadError{URL: url + ".sig", StatusCode: 404}

		dl := &mockDownloader{}
		dl.On("Download", mock.Anything, url+".sig", "").Return("", missing)

		v, err := NewVerifier(VerifierOptions{KeyRingPath: keyPath, Downloader: dl})
		require.NoError(t, err)

		err = v.Verify(context.Background(), archive, url, "")
		assert.ErrorIs(t, err, missing)
	})

	t.Run("unreadable_keyring", func(t *testing.T) {
		archive := writeFile(t, "same.tar.gz", archiveContent)
		badKey := writeFile(t, "bad.asc", "not a key")

		dl := &mockDownloader{}
		v, err := NewVerifier(VerifierOptions{KeyRingPath: badKey, Downloader: dl})
		require.NoError(t, err)

		err = v.Verify(context.Background(), archive, url, "")
		assert.Error(t, err)
		dl.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVerificationMethodString(t *testing.T) {
	assert.Equal(t, "GPG", VerificationGPG.String())
	assert.Equal(t, "SHA256", VerificationSHA256.String())
	assert.Equal(t, "None", VerificationNone.String())
	assert.Equal(t, "Unknown", VerificationMethod(99).String())
}

func TestCalculateSHA256_NonExistentFile(t *testing.T) {
	_, err := calculateSHA256(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
