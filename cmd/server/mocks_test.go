package main

// mockReader implements the io.Reader interface.
type mockReader struct {
	ReadFunc func(p []byte) (n int, err error)
}

func (m mockReader) Read(p []byte) (n int, err error) {
	return m.ReadFunc(p)
}
