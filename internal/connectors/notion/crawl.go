package notion

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/logger"
	notionnorm "github.com/custodia-labs/notion-nlp/internal/normalisers/notion"
)

type crawlTask struct {
	id       string
	page     *notionapi.Page
	database bool

	// parentID is the page holding a child database, used as the
	// hierarchy parent of the database's rows.
	parentID string
}

// crawl visits every page in scope and returns the IDs of pages that are
// live. Pages for which changed returns false are not emitted; a nil
// changed emits every page. Pages or databases that are missing or not
// shared are logged and skipped.
func (c *Connector) crawl(
	ctx context.Context,
	changed func(*notionapi.Page) bool,
	emit func(*notionnorm.Page) error,
) ([]string, error) {
	if changed == nil {
		changed = func(*notionapi.Page) bool { return true }
	}
	if c.config.HasRoots() {
		return c.crawlTree(ctx, changed, emit)
	}
	return c.crawlSearch(ctx, changed, emit)
}

func (c *Connector) crawlSearch(
	ctx context.Context,
	changed func(*notionapi.Page) bool,
	emit func(*notionnorm.Page) error,
) ([]string, error) {
	pages, err := c.client.SearchPages(ctx, c.config.Query)
	if err != nil {
		return nil, err
	}

	var seen []string
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.Archived && !c.config.IncludeArchived {
			continue
		}
		seen = append(seen, string(p.ID))
		if !changed(p) {
			continue
		}

		page, err := c.withBlocks(ctx, p)
		if IsNotFound(err) {
			logger.Warn("Skipping page %s: %v", p.ID, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := emit(page); err != nil {
			return nil, err
		}
	}
	return seen, nil
}

// crawlTree walks breadth-first from the configured roots, following
// child pages and child databases.
func (c *Connector) crawlTree(
	ctx context.Context,
	changed func(*notionapi.Page) bool,
	emit func(*notionnorm.Page) error,
) ([]string, error) {
	var queue []crawlTask
	for _, id := range c.config.RootPageIDs {
		queue = append(queue, crawlTask{id: id})
	}
	for _, id := range c.config.DatabaseIDs {
		queue = append(queue, crawlTask{id: id, database: true})
	}

	visited := make(map[string]bool)
	var seen []string

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		task := queue[0]
		queue = queue[1:]

		if visited[task.id] {
			continue
		}
		visited[task.id] = true

		if task.database {
			rows, err := c.client.QueryDatabase(ctx, task.id)
			if IsNotFound(err) {
				logger.Warn("Skipping database %s: %v", task.id, err)
				continue
			}
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				queue = append(queue, crawlTask{id: string(row.ID), page: row, parentID: task.parentID})
			}
			continue
		}

		p := task.page
		if p == nil {
			var err error
			p, err = c.client.GetPage(ctx, task.id)
			if IsNotFound(err) {
				logger.Warn("Skipping page %s: %v", task.id, err)
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		if p.Archived && !c.config.IncludeArchived {
			continue
		}

		page, err := c.withBlocks(ctx, p)
		if IsNotFound(err) {
			logger.Warn("Skipping page %s: %v", task.id, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		if page.ParentID == "" && task.parentID != "" {
			page.ParentID = task.parentID
		}
		seen = append(seen, page.ID)

		for _, b := range domain.FlattenBlocks(page.Blocks) {
			switch b.Type {
			case domain.BlockChildPage:
				queue = append(queue, crawlTask{id: b.ID})
			case domain.BlockChildDatabase:
				queue = append(queue, crawlTask{id: b.ID, database: true, parentID: page.ID})
			}
		}

		if !changed(p) {
			continue
		}
		if err := emit(page); err != nil {
			return nil, err
		}
	}
	return seen, nil
}

func (c *Connector) withBlocks(ctx context.Context, p *notionapi.Page) (*notionnorm.Page, error) {
	blocks, err := c.client.GetBlocks(ctx, string(p.ID), c.config.MaxDepth)
	if err != nil {
		return nil, err
	}
	page := convertPage(p)
	page.Blocks = blocks
	return page, nil
}
