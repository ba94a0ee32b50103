package port

// Extractor converts raw file bytes into plain text. The format is chosen
// from the filename. Failures are domain.ErrUnsupportedFormat or
// domain.ErrExtraction.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}
