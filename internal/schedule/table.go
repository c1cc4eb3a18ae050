package schedule

// RecurringContest defines one recurring contest series on a platform.
// DayOfWeek is a lowercase weekday name, or a sentinel the projector
// cannot handle: "varies", or a month-relative phrase containing
// "first" or "last". TimeOfDay is a loosely formatted 12-hour clock
// string; the timezone suffix is display-only and not interpreted.
type RecurringContest struct {
	Name      string `json:"name"`
	DayOfWeek string `json:"day_of_week"`
	TimeOfDay string `json:"time_of_day"`
	Frequency string `json:"frequency"`
}

// PlatformSchedule is one row of the static platform table
type PlatformSchedule struct {
	PlatformID        string             `json:"platform_id"`
	DisplayName       string             `json:"display_name"`
	ContestListURL    string             `json:"contest_list_url"`
	BrandColor        string             `json:"brand_color"`
	RecurringContests []RecurringContest `json:"recurring_contests"`
}

// DefaultTable returns the compiled-in platform schedule table.
// Changing recurrence definitions means redeploying, which is fine
// given how rarely these platforms move their slots.
func DefaultTable() []PlatformSchedule {
	return []PlatformSchedule{
		{
			PlatformID:     "codeforces",
			DisplayName:    "Codeforces",
			ContestListURL: "https://codeforces.com/contests",
			BrandColor:     "#1F8ACB",
			RecurringContests: []RecurringContest{
				{Name: "Div. 2 Round", DayOfWeek: "varies", TimeOfDay: "8:05 PM IST", Frequency: "2-3 times per week"},
				{Name: "Educational Round", DayOfWeek: "varies", TimeOfDay: "8:05 PM IST", Frequency: "2-3 times per month"},
			},
		},
		{
			PlatformID:     "leetcode",
			DisplayName:    "LeetCode",
			ContestListURL: "https://leetcode.com/contest/",
			BrandColor:     "#FFA116",
			RecurringContests: []RecurringContest{
				{Name: "Weekly Contest", DayOfWeek: "sunday", TimeOfDay: "8:00 AM EST", Frequency: "Weekly"},
				{Name: "Biweekly Contest", DayOfWeek: "saturday", TimeOfDay: "8:00 PM EST", Frequency: "Every two weeks"},
			},
		},
		{
			PlatformID:     "codechef",
			DisplayName:    "CodeChef",
			ContestListURL: "https://www.codechef.com/contests",
			BrandColor:     "#5B4638",
			RecurringContests: []RecurringContest{
				{Name: "Starters", DayOfWeek: "wednesday", TimeOfDay: "8:00 PM IST", Frequency: "Weekly"},
			},
		},
		{
			PlatformID:     "atcoder",
			DisplayName:    "AtCoder",
			ContestListURL: "https://atcoder.jp/contests/",
			BrandColor:     "#222222",
			RecurringContests: []RecurringContest{
				{Name: "AtCoder Beginner Contest", DayOfWeek: "saturday", TimeOfDay: "9:00 PM JST", Frequency: "Weekly"},
				{Name: "AtCoder Regular Contest", DayOfWeek: "varies", TimeOfDay: "9:00 PM JST", Frequency: "1-2 times per month"},
			},
		},
		{
			PlatformID:     "topcoder",
			DisplayName:    "Topcoder",
			ContestListURL: "https://www.topcoder.com/challenges",
			BrandColor:     "#29A8E0",
			RecurringContests: []RecurringContest{
				{Name: "Single Round Match", DayOfWeek: "varies", TimeOfDay: "12:00 PM EST", Frequency: "Weekly-ish"},
			},
		},
		{
			PlatformID:     "hackerrank",
			DisplayName:    "HackerRank",
			ContestListURL: "https://www.hackerrank.com/contests",
			BrandColor:     "#00EA64",
			RecurringContests: []RecurringContest{
				{Name: "HourRank", DayOfWeek: "varies", TimeOfDay: "8:30 PM IST", Frequency: "Monthly"},
			},
		},
		{
			PlatformID:     "hackerearth",
			DisplayName:    "HackerEarth",
			ContestListURL: "https://www.hackerearth.com/challenges/",
			BrandColor:     "#2C3454",
			RecurringContests: []RecurringContest{
				{Name: "Circuits", DayOfWeek: "last saturday", TimeOfDay: "9:00 PM IST", Frequency: "Monthly"},
				{Name: "Easy", DayOfWeek: "first sunday", TimeOfDay: "9:00 PM IST", Frequency: "Monthly"},
			},
		},
	}
}
