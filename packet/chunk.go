package packet

func ChunkCount(length, size int) int {
	if size < 1 {
		panic(size)
	}
	if length <= size {
		return 1
	}
	return (length + size - 1) / size
}

// Split slices data at byte offsets, the chunks alias data. An empty message
// still yields one empty chunk.
func Split(data []byte, size int) [][]byte {
	count := ChunkCount(len(data), size)
	chunks := make([][]byte, count)
	for i := range chunks {
		start := i * size
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		chunks[i] = data[start:end:end]
	}
	return chunks
}
