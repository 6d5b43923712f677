// Package perf tracks the wall-clock phases of one codec run so tools can
// report where a decode or encode spent its time.
package perf

import (
	"time"

	"github.com/rs/zerolog"
)

type Pipeline struct {
	Name   string
	Start  time.Time
	End    time.Time
	Blocks []Block
}

type Block struct {
	Start       time.Time
	End         time.Time
	Description string
}

func StartPipeline(name string) *Pipeline {
	return &Pipeline{
		Name:  name,
		Start: time.Now(),
	}
}

// StartBlock opens a named phase. Phases nest; EndBlock closes the most
// recently opened one.
func (p *Pipeline) StartBlock(description string) {
	p.Blocks = append(p.Blocks, Block{
		Start:       time.Now(),
		Description: description,
	})
}

func (p *Pipeline) EndBlock() bool {
	for i := len(p.Blocks) - 1; i >= 0; i-- {
		if p.Blocks[i].End.IsZero() {
			p.Blocks[i].End = time.Now()
			return true
		}
	}
	return false
}

// EndPipeline closes any open blocks and stamps the end time.
func (p *Pipeline) EndPipeline() {
	for p.EndBlock() {
	}
	p.End = time.Now()
}

func (b *Block) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// MarshalZerologObject lets a whole pipeline ride along on a log event.
func (p *Pipeline) MarshalZerologObject(e *zerolog.Event) {
	e.Str("pipeline", p.Name)
	e.Dur("total", p.End.Sub(p.Start))
	d := zerolog.Dict()
	for _, b := range p.Blocks {
		d.Dur(b.Description, b.Duration())
	}
	e.Dict("phases", d)
}
