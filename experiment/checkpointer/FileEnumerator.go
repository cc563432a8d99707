package checkpointer

import "fmt"

// fileEnumerator yields filenames with an incrementing counter suffix.
type fileEnumerator struct {
	i         int
	name      string
	extension string
}

func (f *fileEnumerator) filename() string {
	f.i++
	return fmt.Sprintf("%v%v%v", f.name, f.i, f.extension)
}

// FilenameEnumerator returns a function producing filenames with a
// counter suffix that increases by one per call, starting above start.
// The filename parameter is the path prefix and extension the file
// extension, so ("models/q", ".bin") yields models/q1.bin, models/q2.bin
// and so on.
func FilenameEnumerator(start int, filename, extension string) func() string {
	enum := fileEnumerator{i: start, name: filename, extension: extension}
	return enum.filename
}
