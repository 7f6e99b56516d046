package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/treefs/data"
)

// FormatSize renders bytes in IEC units, or raw when human is false.
func FormatSize(size int64, human bool) string {
	if !human {
		return fmt.Sprintf("%d", size)
	}
	return humanize.IBytes(uint64(max(size, 0)))
}

// WriteItems prints items as a table; long adds size, content type and modification time.
func WriteItems(w io.Writer, items []*data.Item, long, human bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, item := range items {
		name := item.Name
		if item.IsDirectory() {
			name += "/"
		}

		if !long {
			fmt.Fprintln(tw, name)
			continue
		}

		size := "-"
		if item.IsFile() {
			size = FormatSize(item.Size(), human)
		}

		detail := item.ContentType
		if item.IsExternalLink() {
			detail = item.ExternalURL
		}
		if detail == "" {
			detail = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.Type, size, item.ModifyTime.Format(time.DateTime), name, detail)
	}

	return tw.Flush()
}

func WriteFileSystems(w io.Writer, list []*data.FileSystem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTENANT\tCREATED")

	for _, fs := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", fs.ID, fs.Name, data.TenantString(fs.TenantID), fs.CreateTime.Format(time.DateTime))
	}

	return tw.Flush()
}
