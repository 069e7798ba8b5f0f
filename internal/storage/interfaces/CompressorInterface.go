package interfaces

// CompressorInterface compresses archive copies. Archives are written
// once and never read back by the service.
type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Close()
}
