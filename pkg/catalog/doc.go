/*
Package catalog is the static table of document kinds.

Each Descriptor names the facts a kind requires (in the order they are asked for), the
question used to solicit each of them and the instructions handed to the content generator.
A Catalog is immutable once built and is the only resource shared between sessions.
*/
package catalog
