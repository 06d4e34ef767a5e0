package scanService

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/context"
)

const explanationPrompt = `You are an expert neurologist. You are tasked with explaining a saliency map of a brain tumor MRI scan.
The saliency map was generated by a deep learning model that was trained to classify brain tumors
as either glioma, meningioma, no tumor, or pituitary.

The saliency map highlights the regions of the image that the machine learning model is focusing on to make the prediction.

The deep learning model predicted the image to be of class '%s' with a confidence of %.2f%%.

In your response:
- Use specific expert medical terminology.
- Explain what regions of the brain the model is focusing on, based on the saliency map. Refer to the regions highlighted
in light cyan, those are the regions where the model is focusing on.
- Explain possible reasons why the model made the prediction it did.
- Don't mention anything like 'The saliency map highlights the regions the model is focusing on, which are in light cyan'
in your explanation.
- Keep your explanation to 10 sentences max.

Let's think step by step about this. Verify step by step that your explanation is correct.`

// explain sends the saliency composite with the prediction to Gemini and
// returns the free-text commentary verbatim.
func (s *scanService) explain(ctx context.Context, compositePath string, label string, confidence float64) (string, error) {
	data, err := os.ReadFile(compositePath)
	if err != nil {
		return "", fmt.Errorf("failed to read saliency composite: %w", err)
	}

	mimeType := "image/jpeg"
	if strings.ToLower(filepath.Ext(compositePath)) == ".png" {
		mimeType = "image/png"
	}

	prompt := fmt.Sprintf(explanationPrompt, label, confidence*100)

	return s.gemini.AnalyzeImage(ctx, base64.StdEncoding.EncodeToString(data), mimeType, prompt)
}
