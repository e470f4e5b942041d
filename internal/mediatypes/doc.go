// Package mediatypes provides shared type definitions for media file
// classification across the media catalog.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains the Category
// enum, the static extension tables that drive classification, and pure
// utility functions with no dependencies beyond the standard library.
//
// # Classification
//
// Use Classify to determine the category of a file based on its extension:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	cat := mediatypes.Classify(ext)
//
// Classification is purely table-driven; anything not listed in one of the
// extension maps is CategoryUnknown and is dropped by the ingestion pipeline
// before any expensive work. Project files (DAW and editor formats) classify
// as CategoryProject but are only ingested when the scan explicitly opts in;
// use Allowed to apply both rules in one place.
package mediatypes
