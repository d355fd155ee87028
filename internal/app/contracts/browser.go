package contracts

import (
	"context"
	"time"
)

// Browser opens isolated page contexts, optionally restoring a previously
// serialized session state. One page context drives one order end-to-end.
type Browser interface {
	NewPage(ctx context.Context, sessionState []byte) (Page, error)
	Close() error
}

// Page is the narrow slice of a live browser page the engine needs. Keeping it
// small lets package tests run against an in-memory fake instead of a real
// browser process.
type Page interface {
	Goto(ctx context.Context, url string) error
	URL() string
	Content(ctx context.Context) (string, error)
	Text(ctx context.Context) (string, error)
	Query(ctx context.Context, selector string) ([]Element, error)
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	Screenshot(ctx context.Context) ([]byte, error)
	ExportState(ctx context.Context) ([]byte, error)
	Close() error
}

// Element is one interactive control on a rendered page. Locators are never
// cached across navigations; DOM identity is not stable between pages.
type Element interface {
	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	SelectOption(ctx context.Context, value string) error
	Press(ctx context.Context, key string) error
	Visible() bool
	Enabled() bool
	TagName() string
	InputType() string
	Attr(name string) string
	Text() string
}
