package notify

import (
	"errors"
	"testing"
)

func TestRenderAllTypes(t *testing.T) {
	data := Data{SenderName: "Omar", PostID: "p1", CommentID: "c1"}

	cases := []struct {
		typ  Type
		want string
	}{
		{TypeFollowUser, "Omar started following you"},
		{TypeLikePost, "Omar liked your post"},
		{TypeCommentPost, "Omar commented on your post"},
		{TypeLikeComment, "Omar liked your comment"},
		{TypeDislikeComment, "Omar disliked your comment"},
		{TypeRatePost, "Omar rated your post"},
	}

	for _, tc := range cases {
		got, err := Render(tc.typ, data)
		if err != nil {
			t.Errorf("Render(%s) failed: %v", tc.typ, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Render(%s) = %q, want %q", tc.typ, got, tc.want)
		}
		if !tc.typ.Valid() {
			t.Errorf("%s must be valid", tc.typ)
		}
	}
}

func TestRenderUnknownType(t *testing.T) {
	_, err := Render(Type("poke_user"), Data{SenderName: "Omar"})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if Type("poke_user").Valid() {
		t.Error("unknown type must not be valid")
	}
}
