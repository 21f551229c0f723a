//go:build tesseract

package ocr

import (
	"github.com/otiai10/gosseract/v2"
)

type gosseractRecognizer struct {
	client *gosseract.Client
}

func newGosseract() (Recognizer, error) {
	return &gosseractRecognizer{client: gosseract.NewClient()}, nil
}

func (g *gosseractRecognizer) Recognize(imagePath string, languages []string) (string, error) {
	if err := g.client.SetLanguage(languages...); err != nil {
		return "", err
	}
	if err := g.client.SetImage(imagePath); err != nil {
		return "", err
	}
	return g.client.Text()
}

func (g *gosseractRecognizer) Close() error {
	return g.client.Close()
}
