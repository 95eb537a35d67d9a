package contest

// User is what the identity provider tells us about a viewer.
type User struct {
	ID      int64
	IsAdmin bool
}

// IsSupervisor is true for global admins, the contest holder and listed admins.
func (c *Contest) IsSupervisor(u *User) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin || u.ID == c.HolderID {
		return true
	}
	return c.admins != nil && c.admins.Contains(u.ID)
}

// AllowedSeeingOthers reports whether competitors may see each other's standings.
func (c *Contest) AllowedSeeingOthers() bool {
	return c.Type == TypeACM
}

// AllowedSeeingScore reports whether numeric scores are visible.
// Without it competitors only see accepted/rejected status.
func (c *Contest) AllowedSeeingScore() bool {
	return c.Type == TypeIOI
}

// AllowedSeeingResult reports whether the judged result is visible.
// Without it competitors only see that the submission compiled.
func (c *Contest) AllowedSeeingResult() bool {
	return c.Type == TypeIOI || c.Type == TypeACM
}

func (c *Contest) AllowedSeeingTestcase() bool {
	return c.Type == TypeIOI
}
