// Package document holds attribute-value documents.
//
// A Document is untyped: each value is a qualified attribute name and a raw
// string. The validator turns it into a TypedDocument whose values carry
// the native representation of their attribute's primitive type.
//
// Documents are read from YAML:
//
//	uri: urn:example:page:1
//	imports:
//	  - com.io7m.ironpage.dublin_core:1:0
//	values:
//	  - name: com.io7m.ironpage.dublin_core:title
//	    value: An example page
//
// Values can also be given as "schema:attribute=raw" pairs on the command
// line (ParsePairs).
package document
