package httpcore

import (
	"bufio"
	"io"
	"sync"
)

// Pooled bufio readers and writers, one pair reused per accepted
// connection's lifetime and returned to the pool on close. A single pair
// of sync.Pools keeps the allocation profile flat; per-CPU sharding is not
// worth the bookkeeping at the request rates one process sees here.
var readerPool = sync.Pool{
	New: func() any {
		return bufio.NewReaderSize(nil, InitialReadBufferSize)
	},
}

var writerPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(nil, InitialWriteBufferSize)
	},
}

func getReader(r io.Reader) *bufio.Reader {
	br := readerPool.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

func putReader(br *bufio.Reader) {
	br.Reset(nil)
	readerPool.Put(br)
}

func getWriter(w io.Writer) *bufio.Writer {
	bw := writerPool.Get().(*bufio.Writer)
	bw.Reset(w)
	return bw
}

func putWriter(bw *bufio.Writer) {
	bw.Reset(nil)
	writerPool.Put(bw)
}
