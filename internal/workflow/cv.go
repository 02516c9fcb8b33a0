package workflow

import (
	"context"

	"github.com/felixhoffmnn/latex-templates/internal/config"
	"github.com/felixhoffmnn/latex-templates/internal/cv"
)

const cvName = "cv"

// CVContext is the data handed to the CV template.
type CVContext struct {
	Config *config.Config `json:"config"`
	CV     *cv.CV         `json:"cv"`
	Date   string         `json:"date"`
}

// CV builds the template context for c, dated today.
func (o *Orchestrator) CV(c *cv.CV) CVContext {
	return CVContext{Config: o.cfg, CV: c, Date: o.now().Format("02.01.2006")}
}

// RunCV renders and compiles a CV into out/cv/cv.pdf. Like letters, CVs are
// neither numbered nor archived.
func (o *Orchestrator) RunCV(ctx context.Context, c *cv.CV) (Outcome, error) {
	log := o.log.With().Str("title", c.Person.Title).Logger()
	return o.runSingle(ctx, log, cvName, o.CV(c))
}
