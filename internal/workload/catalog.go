package workload

import (
	"fmt"
	"slices"
	"strings"
)

// Options carries the inputs shared by catalog workloads.
type Options struct {
	Document string
	Scratch  string
	Seed     int64
}

func (o Options) withDefaults() Options {
	if o.Document == "" {
		o.Document = DefaultDocument
	}
	if o.Scratch == "" {
		o.Scratch = DefaultScratchFile
	}
	return o
}

var catalog = map[string]func(Options) Workload{
	"fibonacci": func(Options) Workload {
		return &Fibonacci{N: 30}
	},
	"fibonacci-recursive": func(Options) Workload {
		return &Fibonacci{N: 30, Recursive: true}
	},
	"factorial": func(Options) Workload {
		return &Factorial{N: 1000}
	},
	"primes": func(Options) Workload {
		return &Primes{Limit: 1000}
	},
	"sort": func(o Options) Workload {
		return &Sort{Size: 10000, Seed: o.Seed}
	},
	"cpu-mix": func(o Options) Workload {
		return NewCPUMix(o.Seed)
	},
	"alloc": func(o Options) Workload {
		return &Alloc{Size: 1000000, Seed: o.Seed}
	},
	"io-write": func(o Options) Workload {
		return &FileWrite{Path: o.Scratch, ChunkSize: DefaultChunkSize}
	},
	"io-read": func(o Options) Workload {
		return &FileRead{Path: o.Scratch, ChunkSize: DefaultChunkSize, Chunks: DefaultChunks}
	},
	"document-read": func(o Options) Workload {
		return &DocumentRead{Path: o.Document}
	},
	"document-parse": func(o Options) Workload {
		return &DocumentParse{Path: o.Document}
	},
}

// Names lists the catalog in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds the named catalog workload.
func New(name string, opts Options) (Workload, error) {
	build, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return build(opts.withDefaults()), nil
}
