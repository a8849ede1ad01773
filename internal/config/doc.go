// Package config provides the configuration of a ghbuster run: defaults,
// the .ghbuster dotfile, validation and the XDG directories used for the
// response cache and the global dotfile.
package config
