// Package history persists finished translations to a local sqlite
// database so past work can be reviewed without re-running the model.
package history
