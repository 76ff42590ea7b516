// Package normalisers turns uploaded files into plain-text documents.
//
// Each sub-package knows one file format. The Registry selects a normaliser
// by file extension, confirms the content matches by sniffing its MIME type,
// and records the detected type in the document metadata.
package normalisers
