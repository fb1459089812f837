// Package nox provides a local, cached search over Nix configuration option
// documentation. It fetches option reference pages for NixOS, nix-darwin,
// Home Manager and the Nix built-ins, parses them into option records,
// persists the records per source, and serves fuzzy queries against them.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, etree/, fs/, http/).
package nox
