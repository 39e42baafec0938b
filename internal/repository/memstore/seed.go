package memstore

// Seed is a directory snapshot for the memory backend.
type Seed struct {
	Subjects []struct {
		Name string `mapstructure:"name"`
		Code string `mapstructure:"code"`
	} `mapstructure:"subjects"`
	Rooms []struct {
		Code string `mapstructure:"code"`
		Type string `mapstructure:"type"`
	} `mapstructure:"rooms"`
	Teachers []struct {
		FirstName string `mapstructure:"first_name"`
		LastName  string `mapstructure:"last_name"`
		Gender    string `mapstructure:"gender"`
	} `mapstructure:"teachers"`
	Sections []struct {
		CourseName string `mapstructure:"course_name"`
		Format     string `mapstructure:"format"`
	} `mapstructure:"sections"`
}

// Load adds every entry of seed and returns the new section ids in order.
func (s *Store) Load(seed Seed) []int64 {
	for _, sub := range seed.Subjects {
		s.AddSubject(sub.Name, sub.Code)
	}
	for _, r := range seed.Rooms {
		s.AddRoom(r.Code, r.Type)
	}
	for _, t := range seed.Teachers {
		s.AddTeacher(t.FirstName, t.LastName, t.Gender)
	}

	sections := make([]int64, 0, len(seed.Sections))
	for _, sec := range seed.Sections {
		sections = append(sections, s.AddSection(sec.CourseName, sec.Format))
	}
	return sections
}
