// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with generic
Map, Filter and Chunk.
*/
package slice

// Map transforms every element of input.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Filter keeps the elements for which predicate is true.
func Filter[T any](input []T, predicate func(T) bool) []T {
	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}
	return result
}

// Chunk splits input into consecutive groups of at most size elements.
// The groups share input's backing array.
func Chunk[T any](input []T, size int) [][]T {
	if size <= 0 {
		panic("slice: chunk size must be positive")
	}

	chunks := make([][]T, 0, (len(input)+size-1)/size)
	for start := 0; start < len(input); start += size {
		end := min(start+size, len(input))
		chunks = append(chunks, input[start:end:end])
	}
	return chunks
}
