package views

import (
	"io"
	"text/tabwriter"
	"text/template"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
)

func renderOrders(w io.Writer, t *template.Template, title string, orders []models.Order) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	data := struct {
		Title  string
		Orders []models.Order
	}{title, orders}
	if err := t.Execute(tw, data); err != nil {
		return err
	}
	return tw.Flush()
}
