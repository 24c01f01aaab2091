package node

import (
	"github.com/pricofy/langbly-node/internal/credential"
	"github.com/pricofy/langbly-node/internal/schema"
)

const (
	ResourceTranslation = "translation"

	OperationTranslate = "translate"
	OperationDetect    = "detect"

	FormatText = "text"
	FormatHTML = "html"

	FormalityDefault = "default"
	FormalityMore    = "more"
	FormalityLess    = "less"
)

// Parameter names
const (
	paramResource       = "resource"
	paramOperation      = "operation"
	paramText           = "text"
	paramTargetLanguage = "targetLanguage"
	paramOptions        = "options"

	optSourceLanguage = "sourceLanguage"
	optFormat         = "format"
	optFormality      = "formality"
)

type (
	// Description tells the host how to present and wire the node
	Description struct {
		DisplayName string            `json:"displayName" yaml:"displayName"`
		Name        string            `json:"name" yaml:"name"`
		Icon        string            `json:"icon" yaml:"icon"`
		Group       []string          `json:"group" yaml:"group"`
		Version     int               `json:"version" yaml:"version"`
		Subtitle    string            `json:"subtitle" yaml:"subtitle"`
		Description string            `json:"description" yaml:"description"`
		Defaults    map[string]string `json:"defaults" yaml:"defaults"`
		Inputs      []string          `json:"inputs" yaml:"inputs"`
		Outputs     []string          `json:"outputs" yaml:"outputs"`
		Credentials []CredentialRef   `json:"credentials" yaml:"credentials"`
		Properties  schema.Properties `json:"properties" yaml:"properties"`
	}

	// CredentialRef names a credential type the node needs
	CredentialRef struct {
		Name     string `json:"name" yaml:"name"`
		Required bool   `json:"required" yaml:"required"`
	}
)

var (
	showTranslate = schema.Show(map[string][]string{
		paramResource:  {ResourceTranslation},
		paramOperation: {OperationTranslate},
	})

	showText = schema.Show(map[string][]string{
		paramResource:  {ResourceTranslation},
		paramOperation: {OperationTranslate, OperationDetect},
	})
)

// GetDescription returns the Langbly node description
func GetDescription() Description {
	return Description{
		DisplayName: "Langbly",
		Name:        "langbly",
		Icon:        "file:langbly.svg",
		Group:       []string{"transform"},
		Version:     1,
		Subtitle:    `={{$parameter["operation"]}}`,
		Description: "Translate text using the Langbly Translation API",
		Defaults:    map[string]string{"name": "Langbly"},
		Inputs:      []string{"main"},
		Outputs:     []string{"main"},
		Credentials: []CredentialRef{
			{Name: credential.Name, Required: true},
		},
		Properties: properties(),
	}
}

func properties() schema.Properties {
	return schema.Properties{
		{
			DisplayName:      "Resource",
			Name:             paramResource,
			Type:             schema.TypeOptions,
			NoDataExpression: true,
			Options: []schema.Option{
				{Name: "Translation", Value: ResourceTranslation},
			},
			Default: ResourceTranslation,
		},
		{
			DisplayName:      "Operation",
			Name:             paramOperation,
			Type:             schema.TypeOptions,
			NoDataExpression: true,
			DisplayOptions: schema.Show(map[string][]string{
				paramResource: {ResourceTranslation},
			}),
			Options: []schema.Option{
				{
					Name:        "Translate Text",
					Value:       OperationTranslate,
					Description: "Translate text to a target language",
					Action:      "Translate text",
				},
				{
					Name:        "Detect Language",
					Value:       OperationDetect,
					Description: "Detect the language of a text",
					Action:      "Detect language",
				},
			},
			Default: OperationTranslate,
		},
		{
			DisplayName:    "Text",
			Name:           paramText,
			Type:           schema.TypeString,
			Required:       true,
			Default:        "",
			Placeholder:    "Enter text to translate...",
			Description:    "The text to translate or analyze",
			TypeOptions:    &schema.PropertyTypeOptions{Rows: 4},
			DisplayOptions: showText,
		},
		{
			DisplayName:    "Target Language",
			Name:           paramTargetLanguage,
			Type:           schema.TypeString,
			Required:       true,
			Default:        "",
			Placeholder:    "e.g. nl, fr, de, es",
			Description:    "ISO 639-1 language code for the target language",
			DisplayOptions: showTranslate,
		},
		{
			DisplayName:    "Additional Options",
			Name:           paramOptions,
			Type:           schema.TypeCollection,
			Placeholder:    "Add Option",
			Default:        map[string]any{},
			DisplayOptions: showTranslate,
			Fields: []schema.Property{
				{
					DisplayName: "Source Language",
					Name:        optSourceLanguage,
					Type:        schema.TypeString,
					Default:     "",
					Placeholder: "e.g. en (leave empty to auto-detect)",
					Description: "ISO 639-1 language code for the source language. Leave empty to auto-detect.",
				},
				{
					DisplayName: "Format",
					Name:        optFormat,
					Type:        schema.TypeOptions,
					Options: []schema.Option{
						{Name: "Plain Text", Value: FormatText},
						{Name: "HTML", Value: FormatHTML},
					},
					Default:     FormatText,
					Description: "Format of the input text. Use HTML to preserve markup during translation.",
				},
				{
					DisplayName: "Formality",
					Name:        optFormality,
					Type:        schema.TypeOptions,
					Options: []schema.Option{
						{Name: "Default", Value: FormalityDefault},
						{Name: "More Formal", Value: FormalityMore},
						{Name: "Less Formal", Value: FormalityLess},
					},
					Default:     FormalityDefault,
					Description: "Whether the translation should lean towards formal or informal language",
				},
			},
		},
	}
}
