// Package types defines the property tag and value model, row and bookmark
// types, provider status codes, and the standard errors shared by the
// mapikit packages.
//
// A property tag packs a property type and a property identifier into one
// 32-bit value. The type occupies the low 16 bits and the identifier the
// high 16 bits, matching the layout of well-known tags such as
// PR_MESSAGE_CLASS_W (0x001A001F).
package types
