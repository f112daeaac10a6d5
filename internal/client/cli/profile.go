package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/netx"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

// uploadToPresignedURL is a test seam for netx.UploadToPresignedURL.
var uploadToPresignedURL = netx.UploadToPresignedURL

func newProfileCmd(a *App) *cobra.Command {
	var req pb.UpdateProfileRequest

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the profile of the logged-in account",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if req.DisplayName == "" && req.AvatarURL == "" && req.Profile == "" {
				return errors.New("nothing to update: set --display-name, --avatar-url or --profile")
			}
			if err := a.api.UpdateProfile(ctx, &req); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Profile updated")
			return nil
		}),
	}

	cmd.Flags().StringVar(&req.DisplayName, "display-name", "", "new display name")
	cmd.Flags().StringVar(&req.AvatarURL, "avatar-url", "", "new avatar URL")
	cmd.Flags().StringVar(&req.Profile, "profile", "", "new profile text")
	return cmd
}

// detectContentType sniffs data and drops any media type parameters.
func detectContentType(data []byte) string {
	ct, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(ct)
}

func newAvatarCmd(a *App) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "avatar <file>",
		Short: "Upload a new avatar image",
		Long: `Upload a new avatar image for the logged-in account.

By default the image goes straight to object storage through a presigned
URL and the account is then pointed at it. With --direct the image is sent
to the server, which stores it and updates the account itself.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read avatar: %w", err)
			}
			contentType := detectContentType(data)

			if direct {
				url, err := a.api.UploadAvatar(ctx, contentType, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Avatar uploaded: %s\n", url)
				return nil
			}

			slot, err := a.api.PresignAvatar(ctx, contentType, int64(len(data)))
			if err != nil {
				return err
			}
			if err := uploadToPresignedURL(ctx, slot.UploadURL, contentType, data); err != nil {
				return err
			}
			if err := a.api.UpdateProfile(ctx, &pb.UpdateProfileRequest{AvatarURL: slot.PublicURL}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Avatar uploaded: %s\n", slot.PublicURL)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "send the image through the server")
	return cmd
}
