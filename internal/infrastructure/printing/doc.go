// Package printing renders HTML documents such as packing slips to PDF with
// headless Chrome (chromedp).
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://chrome:9222"})
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//	pdf, err := renderer.RenderPDF(ctx, html)
package printing
