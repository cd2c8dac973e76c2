package diff

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

const hashBits = 64

// SimilarityScore summarises how close two images are perceptually.
type SimilarityScore struct {
	Distance int     // hamming distance between perception hashes, 0..64
	Percent  float64 // 100 means identical hashes
}

func (s SimilarityScore) String() string {
	return fmt.Sprintf("%.1f%% (d=%d)", s.Percent, s.Distance)
}

// Similarity compares reference and screenshot with a 64-bit perception hash.
// It is insensitive to the reference being at a different resolution.
func Similarity(reference, screenshot image.Image) (SimilarityScore, error) {
	if reference == nil || screenshot == nil {
		return SimilarityScore{}, fmt.Errorf("similarity: both images required")
	}
	refHash, err := goimagehash.PerceptionHash(reference)
	if err != nil {
		return SimilarityScore{}, fmt.Errorf("hash reference: %w", err)
	}
	scrHash, err := goimagehash.PerceptionHash(screenshot)
	if err != nil {
		return SimilarityScore{}, fmt.Errorf("hash screenshot: %w", err)
	}
	d, err := refHash.Distance(scrHash)
	if err != nil {
		return SimilarityScore{}, err
	}
	return SimilarityScore{Distance: d, Percent: 100 * float64(hashBits-d) / hashBits}, nil
}
