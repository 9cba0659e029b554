package export

import (
	"errors"
	"sync"

	"salesdoc/internal/models"
	"salesdoc/internal/render"
)

var errNoRenderer = errors.New("no document renderer configured")

// TreeRenderer turns a document into a visual tree under a template.
// *render.Resolver satisfies it.
type TreeRenderer interface {
	Render(doc *models.Document, totals models.Totals, templateID string) (*render.VisualTree, error)
}

// Job is the frozen input of one export. Document is a private snapshot;
// strategies may read it freely but must not keep it past Execute.
type Job struct {
	Document *models.Document
	Totals   models.Totals
	Request  Request

	renderer TreeRenderer
	once     sync.Once
	tree     *render.VisualTree
	treeErr  error
}

// NewJob creates a job. The caller owns doc; pass a clone.
func NewJob(doc *models.Document, totals models.Totals, req Request, renderer TreeRenderer) *Job {
	return &Job{
		Document: doc,
		Totals:   totals,
		Request:  req,
		renderer: renderer,
	}
}

// Tree renders the visual tree on first use and reuses it for the fallback
func (j *Job) Tree() (*render.VisualTree, error) {
	j.once.Do(func() {
		if j.renderer == nil {
			j.treeErr = errNoRenderer
			return
		}
		j.tree, j.treeErr = j.renderer.Render(j.Document, j.Totals, j.Request.TemplateID)
	})
	return j.tree, j.treeErr
}
