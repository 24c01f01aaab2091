// Package domain contains the core data types exchanged between the host,
// the Langbly node and the Langbly API.
package domain

// JSON is the free-form payload carried by a workflow item.
type JSON map[string]any

// PairedItem links an output item back to the input item it came from.
type PairedItem struct {
	Item int `json:"item" yaml:"item"`
}

// Item is one unit of data flowing through a workflow step.
type Item struct {
	JSON       JSON        `json:"json" yaml:"json"`
	PairedItem *PairedItem `json:"pairedItem,omitempty" yaml:"pairedItem,omitempty"`
}

// TranslateRequest is the request body for the Langbly translate endpoint.
type TranslateRequest struct {
	Q         string `json:"q"`
	Target    string `json:"target"`
	Source    string `json:"source,omitempty"`
	Format    string `json:"format,omitempty"`
	Formality string `json:"formality,omitempty"`
}

// Translation is a single entry of the data.translations list returned by
// the Langbly API.
type Translation struct {
	TranslatedText         string `json:"translatedText"`
	DetectedSourceLanguage string `json:"detectedSourceLanguage,omitempty"`
}

// TranslationResult is the output of the translate operation.
type TranslationResult struct {
	TranslatedText         string `json:"translatedText"`
	DetectedSourceLanguage string `json:"detectedSourceLanguage"`
	TargetLanguage         string `json:"targetLanguage"`
	OriginalText           string `json:"originalText"`
}

// DetectionResult is the output of the detect operation.
type DetectionResult struct {
	DetectedLanguage string `json:"detectedLanguage"`
	OriginalText     string `json:"originalText"`
	Confidence       string `json:"confidence"`
}

// JSON renders the result as an item payload.
func (r TranslationResult) JSON() JSON {
	return JSON{
		"translatedText":         r.TranslatedText,
		"detectedSourceLanguage": r.DetectedSourceLanguage,
		"targetLanguage":         r.TargetLanguage,
		"originalText":           r.OriginalText,
	}
}

// JSON renders the result as an item payload.
func (r DetectionResult) JSON() JSON {
	return JSON{
		"detectedLanguage": r.DetectedLanguage,
		"originalText":     r.OriginalText,
		"confidence":       r.Confidence,
	}
}

// NewItem builds an output item paired with the input at index.
func NewItem(json JSON, index int) Item {
	return Item{
		JSON:       json,
		PairedItem: &PairedItem{Item: index},
	}
}
