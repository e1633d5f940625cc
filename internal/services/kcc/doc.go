// Package kcc drives the Kindle Comic Converter CLI (kcc-c2e) so the
// packing engine can turn directories of chapter images into sized EPUB
// artifacts.
//
// It exposes a Client interface and a CLI implementation that launches the
// binary, streams its output lines to a progress callback, and collects the
// primary artifact plus any _kcc<N> splits the converter produced when the
// input alone exceeded the size target. Tests can swap in fakes to exercise
// packing behaviour without the real converter.
package kcc
