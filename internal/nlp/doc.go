// Package nlp implements the text processor: cleaning, segmentation,
// language detection, stemming, keyword extraction and summarisation of
// document text.
//
// Segmentation follows Unicode UAX #29 word and sentence boundaries.
// Stemming uses Snowball for the languages it supports and is skipped for
// others. Summaries are extractive unless an LLMService is configured, in
// which case generated summaries are used and extraction is the fallback.
package nlp
