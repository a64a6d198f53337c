package domain

import "strings"

// ProfileView is the merged document the completion evaluator inspects. For a
// full save it is built from the in-memory user; for a partial update callers
// must merge the patch onto the persisted document first (see MergeProfile) so
// the evaluator never decides from a partial view.
type ProfileView struct {
	Email         string
	FullName      string
	Session       string
	StudentID     string
	Department    string
	Batch         string
	ContactNumber string
	Address       string
	Bio           string
	ImageURL      string
	SocialLinks   SocialLinks
	CurrentStatus ProfileStatus
}

// ViewOf builds the evaluator input from a full user document.
func ViewOf(u *User) ProfileView {
	return ProfileView{
		Email:         u.Email,
		FullName:      u.FullName,
		Session:       u.Session,
		StudentID:     u.StudentID,
		Department:    u.Department,
		Batch:         u.Batch,
		ContactNumber: u.ContactNumber,
		Address:       u.Address,
		Bio:           u.Bio,
		ImageURL:      u.ImageURL,
		SocialLinks:   u.SocialLinks,
		CurrentStatus: u.ProfileStatus,
	}
}

// EvaluateProfile derives the profile status from a merged document view.
// banned and deleted are sticky: the evaluator never overrides them in either
// direction. Otherwise the result is active when every required field is a
// non-empty string and at least one social link is set, else incomplete.
func EvaluateProfile(v ProfileView) ProfileStatus {
	if v.CurrentStatus == ProfileBanned || v.CurrentStatus == ProfileDeleted {
		return v.CurrentStatus
	}
	if profileComplete(v) {
		return ProfileActive
	}
	return ProfileIncomplete
}

func profileComplete(v ProfileView) bool {
	required := []string{
		v.Email,
		v.FullName,
		v.Session,
		v.StudentID,
		v.Department,
		v.Batch,
		v.ContactNumber,
		v.Address,
		v.Bio,
		v.ImageURL,
	}
	for _, f := range required {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return strings.TrimSpace(v.SocialLinks.Facebook) != "" ||
		strings.TrimSpace(v.SocialLinks.GitHub) != "" ||
		strings.TrimSpace(v.SocialLinks.LinkedIn) != ""
}
