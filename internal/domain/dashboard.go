package domain

// DashboardSession is a booking joined with the session it belongs to.
type DashboardSession struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Mentor      string `json:"mentor"`
	MentorRole  string `json:"mentorRole"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Timezone    string `json:"timezone"`
	Duration    string `json:"duration"`
	Status      string `json:"status"`
	MeetingLink string `json:"meeting_link"`
	Image       string `json:"image"`
}

type LearningProgress struct {
	SessionsCompleted int      `json:"sessionsCompleted"`
	TotalHours        float64  `json:"totalHours"`
	SkillsImproved    []string `json:"skillsImproved"`
	Certificates      int      `json:"certificates"`
}

type DashboardUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MenteeDashboard struct {
	User              DashboardUser      `json:"user"`
	UpcomingSessions  []DashboardSession `json:"upcomingSessions"`
	CompletedSessions []DashboardSession `json:"completedSessions"`
	LearningProgress  LearningProgress   `json:"learningProgress"`
}
