// Package config provides configuration types for the worker bridge:
// controller Options and the TOML session file read by aimsunctl.
package config
