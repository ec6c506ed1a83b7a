package commands

import (
	"github.com/spf13/cobra"

	"github.com/bookify-dev/bookify/internal/forms"
	"github.com/bookify-dev/bookify/internal/guard"
)

// NewProfileCmd creates the profile command
func NewProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.userID(cmd.Context())
			if err != nil {
				return err
			}
			user, err := app.Client.GetProfile(cmd.Context(), id)
			if err != nil {
				return apiError(err, "Failed to load profile")
			}

			app.printf("Name:             %s\n", user.Name)
			app.printf("Email:            %s\n", user.Email)
			app.printf("Gender:           %s\n", user.Gender)
			app.printf("Address:          %s\n", user.Address)
			app.printf("Favourite book:   %s\n", user.FavouriteBook)
			app.printf("Favourite author: %s\n", user.FavouriteAuthor)
			if user.ImageURL != "" {
				app.printf("Image:            %s\n", user.ImageURL)
			}
			return nil
		},
	}

	cmd.AddCommand(newProfileUpdateCmd(app))
	return withRoute(cmd, guard.RouteProfile)
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var name, gender, address, favBook, favAuthor, password, image string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.userID(ctx)
			if err != nil {
				return err
			}
			user, err := app.Client.GetProfile(ctx, id)
			if err != nil {
				return apiError(err, "Failed to load profile")
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				user.Name = name
			}
			if flags.Changed("gender") {
				user.Gender = gender
			}
			if flags.Changed("address") {
				user.Address = address
			}
			if flags.Changed("favourite-book") {
				user.FavouriteBook = favBook
			}
			if flags.Changed("favourite-author") {
				user.FavouriteAuthor = favAuthor
			}
			user.Password = password

			form := forms.Profile{Name: user.Name, Gender: user.Gender, Address: user.Address, Password: password}
			if err := forms.Validate(form); err != nil {
				return err
			}

			file, closeFile, err := openFile(image)
			if err != nil {
				return err
			}
			defer closeFile()

			updated, err := app.Client.UpdateProfile(ctx, id, *user, file)
			if err != nil {
				return apiError(err, "Failed to update profile")
			}
			app.printf("Profile updated for %s.\n", updated.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&address, "address", "", "Address")
	cmd.Flags().StringVar(&favBook, "favourite-book", "", "Favourite book (see 'bookify catalog names')")
	cmd.Flags().StringVar(&favAuthor, "favourite-author", "", "Favourite author (see 'bookify catalog names --authors')")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&image, "image", "", "Path to a profile picture")

	return withRoute(cmd, guard.RouteProfile)
}
