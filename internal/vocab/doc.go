// Package vocab loads the binary vocabulary model that ships with the
// translation model family. The file is a protobuf-style stream of
// length-delimited piece records; the position of each piece in the file
// is its token ID, so file order is preserved exactly.
package vocab
