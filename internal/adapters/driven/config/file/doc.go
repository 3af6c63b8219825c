// Package file keeps notion-nlp settings on disk: config.toml, read and
// written with go-toml, and the editable LLM prompt templates under
// prompts/. Both live in ~/.notion-nlp unless another directory is given.
package file
