package pdf

import (
	"context"
	"os"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_RendersAndCleansUp(t *testing.T) {
	path := writeFixture(t, func(f *fpdf.Fpdf) {
		f.Text(72, 72, "Page one")
		f.AddPage()
	})

	conv := NewConverter(t.TempDir())
	images, err := conv.Convert(context.Background(), path, 72)
	if err != nil {
		t.Skipf("MuPDF unavailable: %v", err)
	}
	require.Len(t, images, 2)

	assert.Equal(t, 1, images[0].PageNumber)
	assert.True(t, images[0].HasText)
	assert.False(t, images[1].HasText)
	assert.Greater(t, images[0].Width, 0)
	assert.FileExists(t, images[0].ImagePath)

	require.NoError(t, conv.Cleanup())
	_, err = os.Stat(images[0].ImagePath)
	assert.True(t, os.IsNotExist(err))

	// second cleanup is a no-op
	assert.NoError(t, conv.Cleanup())
}

func TestConverter_RejectsBadDPI(t *testing.T) {
	path := writeFixture(t, func(f *fpdf.Fpdf) { f.Text(72, 72, "x") })

	_, err := NewConverter(t.TempDir()).Convert(context.Background(), path, 10)
	assert.Error(t, err)
}
