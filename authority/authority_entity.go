package authority

type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Permissions []string

func (p Permissions) HasPerm(id string) bool {
	for _, v := range p {
		if v == id {
			return true
		}
	}
	return false
}

func (p Permissions) HasAnyPerm(ids ...string) bool {
	for _, id := range ids {
		if p.HasPerm(id) {
			return true
		}
	}
	return false
}
