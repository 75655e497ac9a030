package logger

import "iter"

// lineage yields l and then each registered ancestor up to root.
func (l *Logger) lineage() iter.Seq[*Logger] {
	return func(yield func(*Logger) bool) {
		for n := l; n != nil; n = n.Parent() {
			if !yield(n) {
				return
			}
		}
	}
}

// resolveInherited returns the first value get reports as set, walking
// from l towards root.
func resolveInherited[T any](l *Logger, get func(*Logger) (T, bool)) (T, bool) {
	for n := range l.lineage() {
		if v, ok := get(n); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
