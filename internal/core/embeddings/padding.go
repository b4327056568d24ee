package embeddings

// PadToTargetDimensions pads with zeros or truncates vec to target entries.
// Zero padding leaves cosine similarity between padded vectors unchanged.
func PadToTargetDimensions(vec []float32, target int) []float32 {
	if target <= 0 || len(vec) == target {
		return vec
	}

	if len(vec) > target {
		return vec[:target]
	}

	padded := make([]float32, target)
	copy(padded, vec)

	return padded
}
