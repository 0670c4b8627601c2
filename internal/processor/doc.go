// Package processor contains the core run logic of the offlingo CLI. It
// orchestrates model loading, single and batch translation, history
// recording, and the listing commands. This package serves as the main
// coordinator between all other components.
package processor
