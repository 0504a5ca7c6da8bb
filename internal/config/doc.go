// Package config assembles the setup-same configuration from command line
// flags, GitHub Actions inputs, an optional Lua config file and the runner
// environment.
//
// # Precedence
//
// For every setting the first non-empty source wins:
//
//	flag > action input > Lua config file > default
//
// The token never comes from the config file; it falls back to $GITHUB_TOKEN.
// GitHub Enterprise hosts are honored through $GITHUB_SERVER_URL and
// $GITHUB_API_URL.
//
// # Config File
//
// The config file is a Lua script that must define a global "same" table:
//
//	same = {
//	    version = platform.is_macos and "1.2.0" or "1.1.4",
//	    repository = "traiproject/same",
//	    sha256 = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
//	    gpg_key_file = "keys/release.asc",
//	}
//
// A read-only platform table (os, arch, tag, is_linux, is_macos, is_x86_64,
// is_arm64, distro and when) is available to the script. gpg_key_file is
// resolved relative to the config file.
//
// # Sandboxing
//
// Scripts run in gopher-lua with the os, io, package, debug and metatable
// functions removed, a 256 frame call stack and a 5 second evaluation
// timeout. Files larger than 1 MiB are rejected. Lines that look like
// credentials produce a warning.
package config
