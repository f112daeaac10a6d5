package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	pb "github.com/dmitrijs2005/gophauth/internal/proto"
)

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func printAccount(w io.Writer, acc *pb.Account) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", acc.ID)
	fmt.Fprintf(tw, "Account:\t%s\n", acc.AccountName)
	fmt.Fprintf(tw, "Display name:\t%s\n", acc.DisplayName)
	fmt.Fprintf(tw, "Role:\t%s\n", acc.Role)
	if acc.AvatarURL != "" {
		fmt.Fprintf(tw, "Avatar:\t%s\n", acc.AvatarURL)
	}
	if acc.Profile != "" {
		fmt.Fprintf(tw, "Profile:\t%s\n", acc.Profile)
	}
	if acc.UnionID != "" {
		fmt.Fprintf(tw, "Union ID:\t%s\n", acc.UnionID)
	}
	if acc.MpOpenID != "" {
		fmt.Fprintf(tw, "MP open ID:\t%s\n", acc.MpOpenID)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", formatMillis(acc.CreatedAt))
	fmt.Fprintf(tw, "Updated:\t%s\n", formatMillis(acc.UpdatedAt))
	tw.Flush()
}

func printAccounts(w io.Writer, list []*pb.Account) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No accounts found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT\tDISPLAY NAME\tROLE\tCREATED")
	for _, acc := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", acc.ID, acc.AccountName, acc.DisplayName, acc.Role, formatMillis(acc.CreatedAt))
	}
	tw.Flush()
}
