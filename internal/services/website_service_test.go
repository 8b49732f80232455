package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podelme/podel/internal/database/testutil"
)

func TestWebsiteCreateFindAndVote(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewWebsiteService(db)
	require.NoError(t, err)

	website, err := svc.Create(context.Background(), CreateWebsiteInput{
		Name:        "podela",
		DomainName:  "podela.me",
		Description: "community reviews",
	})
	require.NoError(t, err)
	require.Len(t, website.ID, 26)
	require.NotNil(t, website.Description)

	byID, err := svc.Find(context.Background(), website.ID)
	require.NoError(t, err)
	require.Equal(t, website.ID, byID.ID)

	byName, err := svc.Find(context.Background(), "podela")
	require.NoError(t, err)
	require.Equal(t, website.ID, byName.ID)

	require.NoError(t, svc.Vote(context.Background(), website.ID, true))
	require.NoError(t, svc.Vote(context.Background(), website.ID, true))
	require.NoError(t, svc.Vote(context.Background(), website.ID, false))

	voted, err := svc.Find(context.Background(), website.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, voted.KarmaUp)
	require.EqualValues(t, 1, voted.KarmaDown)
}

func TestWebsiteFindMissing(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewWebsiteService(db)
	require.NoError(t, err)

	_, err = svc.Find(context.Background(), "missing")
	require.ErrorIs(t, err, ErrWebsiteNotFound)

	require.ErrorIs(t, svc.Vote(context.Background(), "missing", true), ErrWebsiteNotFound)
}
