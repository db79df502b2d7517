// Package parser reads schema source documents into the parsed AST.
//
// # Source Format
//
// A schema is an XML document in the namespace
// urn:com.io7m.ironpage.metadata.schema.xml:1:0:
//
//	<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0"
//	        id="com.io7m.example" versionMajor="1" versionMinor="0">
//	  <Comment>An example.</Comment>
//	  <Import id="com.io7m.basic" versionMajor="1" versionMinor="2"/>
//	  <DeclareType name="t">
//	    <TypePrimitive type="INTEGER"/>
//	    <Comment>A t.</Comment>
//	  </DeclareType>
//	  <DeclareAttribute name="a" cardinality="CARDINALITY_1">
//	    <TypeNamed schema="com.io7m.example" type="t"/>
//	  </DeclareAttribute>
//	</Schema>
//
// The parser checks structure only. Names are validated by the binder.
// Structural problems are reported as SYNTAX_ERROR diagnostics with line
// and column; the parser keeps going after a bad declaration so several
// problems surface in one pass.
package parser
