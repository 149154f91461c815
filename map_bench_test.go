package intmap

import (
	"testing"

	"github.com/llxisdsh/pb"
)

const benchKeys = 1 << 16

func benchmarkPrefill(b *testing.B) *Map {
	b.Helper()
	m := New(WithCapacity(benchKeys))
	for k := int32(1); k <= benchKeys; k++ {
		if _, err := m.Put(k, k); err != nil {
			b.Fatal(err)
		}
	}
	return m
}

func BenchmarkMapGet(b *testing.B) {
	b.ReportAllocs()
	m := benchmarkPrefill(b)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		k := int32(1)
		for pb.Next() {
			_, _ = m.Get(k)
			k++
			if k > benchKeys {
				k = 1
			}
		}
	})
}

func BenchmarkMapPut(b *testing.B) {
	b.ReportAllocs()
	m := New(WithCapacity(benchKeys))
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		k := int32(1)
		for pb.Next() {
			_, _ = m.Put(k, k)
			k++
			if k > benchKeys {
				k = 1
			}
		}
	})
}

func BenchmarkMapPutGrowing(b *testing.B) {
	b.ReportAllocs()
	m := New()
	b.ResetTimer()
	k := int32(0)
	for b.Loop() {
		k++
		_, _ = m.Put(k, k)
	}
}

func BenchmarkMapMixed(b *testing.B) {
	b.ReportAllocs()
	m := benchmarkPrefill(b)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		k := int32(1)
		for pb.Next() {
			if k%10 == 0 {
				_, _ = m.Put(k, k+1)
			} else {
				_, _ = m.Get(k)
			}
			k++
			if k > benchKeys {
				k = 1
			}
		}
	})
}

// Baseline: the general-purpose concurrent map this package trades
// genericity against.

func BenchmarkPbMapOfLoad(b *testing.B) {
	b.ReportAllocs()
	var m pb.MapOf[int32, int32]
	for k := int32(1); k <= benchKeys; k++ {
		m.Store(k, k)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		k := int32(1)
		for pb.Next() {
			_, _ = m.Load(k)
			k++
			if k > benchKeys {
				k = 1
			}
		}
	})
}

func BenchmarkPbMapOfStore(b *testing.B) {
	b.ReportAllocs()
	var m pb.MapOf[int32, int32]
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		k := int32(1)
		for pb.Next() {
			m.Store(k, k)
			k++
			if k > benchKeys {
				k = 1
			}
		}
	})
}
