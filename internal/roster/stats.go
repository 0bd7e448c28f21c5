package roster

// Role is the role shown for a raid member.
type Role string

const (
	RoleTank   Role = "tank"
	RoleHealer Role = "healer"
	RoleDPS    Role = "dps"
	RoleNone   Role = "none"
)

var roleIcons = map[Role]string{
	RoleTank:   "https://wow.zamimg.com/images/wow/icons/large/inv_shield_06.jpg",
	RoleHealer: "https://wow.zamimg.com/images/wow/icons/large/inv_staff_10.jpg",
	RoleDPS:    "https://wow.zamimg.com/images/wow/icons/large/inv_sword_27.jpg",
}

// StatRow is one raid member in the statistics table.
type StatRow struct {
	Name      string `json:"name"`
	Class     string `json:"class"`
	Spec      string `json:"spec"`
	Role      Role   `json:"role"`
	ClassIcon string `json:"class_icon"`
	RoleIcon  string `json:"role_icon,omitempty"`
}

// Statistics summarises a plan.
type Statistics struct {
	Rows    []StatRow `json:"rows"`
	Members int       `json:"members"`
	Size    int       `json:"size"`
	Tanks   int       `json:"tanks"`
	Healers int       `json:"healers"`
	DPS     int       `json:"dps"`
	Flex    int       `json:"flex"`
}

// Statistics lists the raid members in order with the first role they
// hold, checked tank, healer, then dps. Flex members show no role.
func (p *Plan) Statistics() Statistics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Statistics{
		Rows:    make([]StatRow, 0, len(p.Members)),
		Members: len(p.Members),
		Size:    p.Size,
		Tanks:   len(p.Tanks),
		Healers: len(p.Healers),
		DPS:     len(p.DPS),
		Flex:    len(p.Flex),
	}
	for _, m := range p.Members {
		role := RoleNone
		switch {
		case contains(p.Tanks, m.Name):
			role = RoleTank
		case contains(p.Healers, m.Name):
			role = RoleHealer
		case contains(p.DPS, m.Name):
			role = RoleDPS
		}
		s.Rows = append(s.Rows, StatRow{
			Name:      m.Name,
			Class:     m.Class,
			Spec:      m.Spec,
			Role:      role,
			ClassIcon: ClassIconURL(m.Class),
			RoleIcon:  roleIcons[role],
		})
	}
	return s
}
