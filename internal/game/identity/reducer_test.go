package identity

import (
	"testing"

	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func threePlayerRoom() GameState {
	s := NewRoom("room1", "host", "Hana")
	s = JoinRoom(s, "p1", "Bo")
	s = JoinRoom(s, "p2", "Cy")
	return s
}

func TestJoinRoomAnyStatus(t *testing.T) {
	s := NewRoom("room1", "host", "Hana")
	s, err := StartSession(s, "host")
	require.NoError(t, err)

	s = JoinRoom(s, "p1", "Bo")
	require.Len(t, s.Players, 2)
	assert.Equal(t, game.StatusPlaying, s.Status)

	assert.Equal(t, s, JoinRoom(s, "p1", "Other"), "rejoin by id must not change state")
}

func TestStartSessionRequiresHost(t *testing.T) {
	s := threePlayerRoom()
	_, err := StartSession(s, "p1")
	assert.ErrorIs(t, err, game.ErrUnauthorized)
}

func TestUpdateMapCreatesAndOverwrites(t *testing.T) {
	s := threePlayerRoom()

	first := Map{Given: []string{"sister"}, Chosen: []string{"runner", "cook"}, Core: []string{"curious"}}
	next, err := UpdateMap(s, "p1", "p2", first)
	require.NoError(t, err)
	assert.Equal(t, first, next.Players[1].Maps["p2"])
	assert.Empty(t, s.Players[1].Maps, "input must not be mutated")

	next, err = UpdateMap(next, "p1", "p2", EmptyMap())
	require.NoError(t, err)
	assert.Equal(t, EmptyMap(), next.Players[1].Maps["p2"])

	next, err = UpdateMap(next, "p1", "p1", first)
	require.NoError(t, err)
	assert.Len(t, next.Players[1].Maps, 2)
}

func TestUpdateMapIsWholesale(t *testing.T) {
	s := threePlayerRoom()
	s, _ = UpdateMap(s, "host", "host", Map{Given: []string{"a"}, Chosen: []string{"b"}, Core: []string{"c"}})
	s, err := UpdateMap(s, "host", "host", Map{Core: []string{"z"}})
	require.NoError(t, err)
	assert.Equal(t, Map{Given: []string{}, Chosen: []string{}, Core: []string{"z"}}, s.Players[0].Maps["host"])
}

func TestUpdateMapKeepsCallerSlices(t *testing.T) {
	s := threePlayerRoom()
	given := []string{"a", "b"}
	next, err := UpdateMap(s, "p1", "p1", Map{Given: given})
	require.NoError(t, err)
	given[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, next.Players[1].Maps["p1"].Given)
}

func TestUpdateMapUnknownAuthor(t *testing.T) {
	_, err := UpdateMap(threePlayerRoom(), "ghost", "p1", EmptyMap())
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)
}

func TestSetPresenterTiesFields(t *testing.T) {
	s := threePlayerRoom()
	want := Map{Given: []string{"x"}, Chosen: []string{}, Core: []string{}}
	s, _ = UpdateMap(s, "p1", "p2", want)

	next := SetPresenter(s, strp("p1"), strp("p2"))
	require.NotNil(t, next.PresenterID)
	require.NotNil(t, next.PresentingSubjectID)
	assert.Equal(t, "p1", *next.PresenterID)
	assert.Equal(t, "p2", *next.PresentingSubjectID)
	m, ok := next.PresentedMap()
	require.True(t, ok)
	assert.Equal(t, want, m)

	self := SetPresenter(s, strp("p1"), nil)
	assert.Equal(t, "p1", *self.PresentingSubjectID)

	cleared := SetPresenter(next, nil, strp("p2"))
	assert.Nil(t, cleared.PresenterID)
	assert.Nil(t, cleared.PresentingSubjectID)
}

func TestKickPlayerClearsPresenter(t *testing.T) {
	s := threePlayerRoom()
	s, _ = UpdateMap(s, "host", "p2", Map{Core: []string{"kind"}})
	s = SetPresenter(s, strp("host"), strp("p2"))

	next, err := KickPlayer(s, "host", "p2")
	require.NoError(t, err)
	assert.Len(t, next.Players, 2)
	assert.Nil(t, next.PresenterID)
	assert.Nil(t, next.PresentingSubjectID)
	assert.NotContains(t, next.Players[0].Maps, "p2")

	s = SetPresenter(s, strp("p1"), nil)
	next, err = KickPlayer(s, "host", "p2")
	require.NoError(t, err)
	require.NotNil(t, next.PresenterID, "unrelated presenter must survive the kick")
	assert.Equal(t, "p1", *next.PresenterID)
}

func TestKickPlayerRejections(t *testing.T) {
	s := threePlayerRoom()

	_, err := KickPlayer(s, "p1", "p2")
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	_, err = KickPlayer(s, "host", "host")
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	_, err = KickPlayer(s, "host", "ghost")
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)
}

func TestLeaveRoomPromotesHost(t *testing.T) {
	s := threePlayerRoom()
	s = SetPresenter(s, strp("host"), nil)

	next, err := LeaveRoom(s, "host")
	require.NoError(t, err)
	assert.Equal(t, "p1", next.HostID)
	assert.Nil(t, next.PresenterID)

	next, err = LeaveRoom(next, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p1", next.HostID)
}

func TestRenamePlayer(t *testing.T) {
	s := threePlayerRoom()
	next := RenamePlayer(s, "p2", "Cyrus")
	assert.Equal(t, "Cyrus", next.Players[2].Name)
	assert.Equal(t, "Cy", s.Players[2].Name)
}
