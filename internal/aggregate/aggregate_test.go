package aggregate

import (
	"testing"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/modelname"
	"github.com/good-yellow-bee/syncstat/internal/models"
	"github.com/good-yellow-bee/syncstat/internal/parser"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

const mb = 1024 * 1024

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, server, model, user string, support, size int64) models.Record {
	return models.Record{
		Date:        date,
		Server:      server,
		Model:       model,
		User:        user,
		SupportSize: support,
		ModelSize:   size,
	}
}

func TestStringSet(t *testing.T) {
	s := NewStringSet()
	s.Add("b")
	s.Add("a")
	s.Add("b")
	s.Add("")
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	got := s.Sorted()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Sorted() = %v", got)
	}
}

func TestLatest_TiesGoToLaterRecord(t *testing.T) {
	var l latest
	l.observe(day(2), 10)
	l.observe(time.Time{}, 99)
	l.observe(day(2), 20)
	l.observe(day(1), 30)
	if l.value != 20 || !l.date.Equal(day(2)) {
		t.Errorf("latest = %v/%d, want day 2/20", l.date, l.value)
	}

	var e earliest
	e.observe(day(3), 10)
	e.observe(day(1), 20)
	e.observe(day(1), 30)
	e.observe(time.Time{}, 99)
	if e.value != 20 {
		t.Errorf("earliest value = %d, want 20", e.value)
	}
}

func TestUsers(t *testing.T) {
	records := []models.Record{
		rec(day(1), "S1", "m1", "A", 100, 0),
		rec(day(1), "S1", "m1", "A", 100, 0),
		rec(day(2), "S1", "m2", "A", 100, 0),
		rec(time.Time{}, "S1", "m2", "A", 100, 0),
		rec(day(1), "S2", "m3", "B", 400, 0),
		rec(day(1), "S2", "m3", "C", 400, 0),
		rec(day(1), "S2", "m3", "", 1000, 0),
	}

	got := Users(records)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// All three transferred 400 bytes.
	if got[0].User != "A" || got[1].User != "B" || got[2].User != "C" {
		t.Errorf("order = %s,%s,%s", got[0].User, got[1].User, got[2].User)
	}

	a := got[0]
	if a.SyncCount != 4 || a.UniqueDays != 2 || a.TotalBytes != 400 {
		t.Errorf("A = %+v", a)
	}
	if a.AvgBytesPerDay != 200 {
		t.Errorf("A avg = %v, want 200", a.AvgBytesPerDay)
	}
}

func TestUsers_NoDatesAverageIsZero(t *testing.T) {
	got := Users([]models.Record{rec(time.Time{}, "", "", "A", 100, 0)})
	if len(got) != 1 || got[0].UniqueDays != 0 || got[0].AvgBytesPerDay != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestUsers_Empty(t *testing.T) {
	if got := Users(nil); got == nil || len(got) != 0 {
		t.Errorf("Users(nil) = %v, want empty slice", got)
	}
}

func TestServers_LatestModelSizeNotSummed(t *testing.T) {
	records := []models.Record{
		rec(day(1), "S1", "m", "A", 10, 100),
		rec(day(3), "S1", "m", "A", 30, 150),
		rec(day(2), "S1", "m", "B", 20, 200),
		rec(time.Time{}, "S1", "m", "B", 0, 999),
	}

	got := Servers(records)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	s := got[0]
	if s.SupportBytes != 60 {
		t.Errorf("SupportBytes = %d, want 60", s.SupportBytes)
	}
	if s.TotalModelBytes != 150 {
		t.Errorf("TotalModelBytes = %d, want 150", s.TotalModelBytes)
	}
	if s.SyncCount != 4 || s.Users != 2 || s.Models != 1 {
		t.Errorf("counts = %d/%d/%d", s.SyncCount, s.Users, s.Models)
	}
	if s.LastActivity == nil || !s.LastActivity.Equal(day(3)) {
		t.Errorf("LastActivity = %v, want day 3", s.LastActivity)
	}

	m := Models(records)[0]
	if m.SupportBytes != 60 || m.LastSize != 150 || m.FirstSize != 100 || m.Growth != 50 {
		t.Errorf("model = %+v", m)
	}
}

func TestServers_SumsLatestPerModel(t *testing.T) {
	records := []models.Record{
		rec(day(1), "S1", "a", "U", 0, 300*mb),
		rec(day(2), "S1", "a", "U", 0, 500*mb),
		rec(day(1), "S1", "b", "U", 0, 100*mb),
		rec(day(1), "S1", "", "U", 0, 900*mb),
	}

	s := Servers(records)[0]
	if s.TotalModelBytes != 600*mb {
		t.Errorf("TotalModelBytes = %d, want %d", s.TotalModelBytes, 600*mb)
	}
	if s.Models != 2 {
		t.Errorf("Models = %d, want 2", s.Models)
	}
	if s.AvgModelMB != 300 {
		t.Errorf("AvgModelMB = %v, want 300", s.AvgModelMB)
	}
	if s.Zones.Overall != zone.Good {
		t.Errorf("Overall = %s, want good", s.Zones.Overall)
	}
}

func TestServers_OrderBySeverity(t *testing.T) {
	var records []models.Record
	for i := 0; i < 21; i++ {
		records = append(records, rec(day(1), "B-warn", "m", string(rune('a'+i)), 0, 0))
	}
	records = append(records,
		rec(day(1), "A-good", "m", "u", 0, 0),
		rec(day(1), "C-crit", "huge", "u", 0, 200*1024*mb),
		rec(day(1), "", "m", "u", 0, 0),
	)

	got := Servers(records)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"C-crit", "B-warn", "A-good"}
	for i, name := range want {
		if got[i].Server != name {
			t.Errorf("[%d] = %s, want %s", i, got[i].Server, name)
		}
	}
	if got[0].Zones.TotalSize != zone.Critical || got[0].Zones.AvgSize != zone.Critical {
		t.Errorf("C zones = %+v", got[0].Zones)
	}
	if len(got[0].Recommendations) != 2 {
		t.Errorf("C recommendations = %v", got[0].Recommendations)
	}

	counts := ZoneCounts(got)
	if counts[zone.Good] != 1 || counts[zone.Warning] != 1 || counts[zone.Critical] != 1 {
		t.Errorf("ZoneCounts = %v", counts)
	}
}

func TestServers_NoModelsAverageIsZero(t *testing.T) {
	s := Servers([]models.Record{rec(day(1), "S", "", "u", 5, 5)})[0]
	if s.Models != 0 || s.AvgModelMB != 0 || s.TotalModelBytes != 0 {
		t.Errorf("server = %+v", s)
	}
}

func TestModels(t *testing.T) {
	records := []models.Record{
		rec(day(2), "S1", "P_T_X_АР.rvt", "A", 1, 10),
		rec(day(1), "S1", "P_T_X_АР.rvt", "B", 2, 20),
		rec(day(2), "S1", "P_T_X_АР.rvt", "A", 3, 30),
		rec(day(1), "S2", "P_T_X_АР.rvt", "A", 4, 40),
		rec(day(1), "", "P_T_X_АР.rvt", "A", 5, 50),
		rec(day(1), "S1", "", "A", 6, 60),
	}

	got := Models(records)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	m := got[0]
	if m.Server != "S1" || m.SyncCount != 3 || m.Users != 2 {
		t.Fatalf("first = %+v", m)
	}
	if m.FirstSize != 20 || m.LastSize != 30 || m.Growth != 10 {
		t.Errorf("sizes = %d/%d/%d", m.FirstSize, m.LastSize, m.Growth)
	}
	if m.Section != modelname.SectionAR || m.SectionLabel != "АР (Архитектура)" || m.Project != "X" {
		t.Errorf("classification = %s/%s/%s", m.Section, m.SectionLabel, m.Project)
	}
	if len(m.Daily) != 2 || m.Daily[0].Day != "01.01.2024" || m.Daily[1].Syncs != 2 || m.Daily[1].SupportBytes != 4 {
		t.Errorf("daily = %+v", m.Daily)
	}
	if got[1].Server != "S2" {
		t.Errorf("second = %s, want S2", got[1].Server)
	}
}

func TestModelTypes(t *testing.T) {
	stats := Models([]models.Record{
		rec(day(1), "S", "P_T_X_КР1", "A", 1, 0),
		rec(day(1), "S", "P_T_X_КЖ", "A", 1, 0),
		rec(day(1), "S", "P_T_X_АР", "A", 1, 0),
		rec(day(1), "S", "P_T_X_АР", "A", 1, 0),
		rec(day(1), "S", "P_T_X_АР", "A", 1, 0),
		rec(day(1), "S", "other", "A", 1, 0),
	})

	got := ModelTypes(stats)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Section != modelname.SectionAR || got[0].Syncs != 3 || got[0].Models != 1 {
		t.Errorf("[0] = %+v", got[0])
	}
	if got[1].Section != modelname.SectionKR || got[1].Models != 2 {
		t.Errorf("[1] = %+v", got[1])
	}
	if got[2].Label != "Прочее" {
		t.Errorf("[2] = %+v", got[2])
	}
}

func TestActivity(t *testing.T) {
	records := []models.Record{
		rec(day(3), "S", "m", "A", 5, 0),
		rec(day(1), "S", "m", "A", 1, 0),
		rec(day(1), "S", "m", "B", 2, 0),
		rec(time.Time{}, "S", "m", "B", 100, 0),
		rec(day(2), "S", "other", "B", 100, 0),
		rec(day(2), "T", "m", "B", 100, 0),
	}

	got := Activity(records, "S", "m")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Day != "01.01.2024" || got[0].Syncs != 2 || got[0].SupportBytes != 3 {
		t.Errorf("[0] = %+v", got[0])
	}
	if got[1].Day != "03.01.2024" || got[1].SupportBytes != 5 {
		t.Errorf("[1] = %+v", got[1])
	}

	if got := Activity(records, "S", "missing"); len(got) != 0 {
		t.Errorf("unknown model = %v, want empty", got)
	}
}

func TestProjects_UsersCountedOncePerLevel(t *testing.T) {
	records := []models.Record{
		rec(day(1), "S1", "Org_Obj_MINS_АР1.rvt", "A", 1, 0),
		rec(day(2), "S1", "Org_Obj_MINS_АР1.rvt", "A", 1, 0),
	}

	got := Projects(records, ProjectSortSyncs)
	if len(got) != 1 {
		t.Fatalf("projects = %d, want 1", len(got))
	}
	p := got[0]
	if p.Name != "MINS" || p.TotalSyncs != 2 || p.Users != 1 {
		t.Errorf("project = %+v", p)
	}
	if len(p.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(p.Sections))
	}
	s := p.Sections[0]
	if s.Section != modelname.SectionAR || s.TotalSyncs != 2 || s.Users != 1 {
		t.Errorf("section = %+v", s)
	}
	m := s.Models[0]
	if m.SyncCount != 2 || m.Users != 1 || len(m.Daily) != 2 {
		t.Errorf("model = %+v", m)
	}
}

func TestProjects_Hierarchy(t *testing.T) {
	records := []models.Record{
		rec(day(1), "S1", "O_T_ALFA_АР", "A", 0, 100),
		rec(day(2), "S1", "O_T_ALFA_АР", "B", 0, 180),
		rec(day(1), "S1", "O_T_ALFA_КР", "C", 0, 10),
		rec(day(1), "S2", "O_T_BETA_ОВ", "A", 0, 0),
		rec(day(1), "S2", "O_T_BETA_ОВ", "A", 0, 0),
		rec(day(1), "S2", "O_T_BETA_ОВ", "A", 0, 0),
		rec(day(1), "S2", "", "A", 0, 0),
	}

	bySyncs := Projects(records, ProjectSortSyncs)
	if len(bySyncs) != 2 {
		t.Fatalf("projects = %d, want 2", len(bySyncs))
	}
	if bySyncs[0].Name != "ALFA" || bySyncs[1].Name != "BETA" {
		t.Errorf("ties on syncs should break by name: %s, %s", bySyncs[0].Name, bySyncs[1].Name)
	}

	byUsers := Projects(records, ProjectSortUsers)
	if byUsers[0].Name != "ALFA" || byUsers[0].Users != 3 {
		t.Errorf("by users first = %+v", byUsers[0])
	}

	alfa, ok := FindProject(bySyncs, "ALFA")
	if !ok {
		t.Fatal("ALFA not found")
	}
	ar, ok := alfa.Section(modelname.SectionAR)
	if !ok {
		t.Fatal("АР section not found")
	}
	if ar.TotalSyncs != 2 || ar.Users != 2 {
		t.Errorf("АР = %+v", ar)
	}
	if g := ar.Models[0].Growth; g != 80 {
		t.Errorf("growth = %d, want 80", g)
	}
	if _, ok := alfa.Section(modelname.SectionGP); ok {
		t.Error("unexpected ГП section")
	}
	if _, ok := FindProject(bySyncs, "GAMMA"); ok {
		t.Error("unexpected project GAMMA")
	}
}

func TestParseProjectSort(t *testing.T) {
	if s, ok := ParseProjectSort("users"); !ok || s != ProjectSortUsers {
		t.Error("users should parse")
	}
	if s, ok := ParseProjectSort(""); !ok || s != ProjectSortSyncs {
		t.Error("empty should default to syncs")
	}
	if _, ok := ParseProjectSort("size"); ok {
		t.Error("size should not parse")
	}
}

func TestCleanup(t *testing.T) {
	records := []models.Record{
		rec(day(1), "S", "small", "A", 149*mb, 0),
		rec(day(1), "S", "warn", "A", 150*mb, 0),
		rec(day(2), "S", "warn", "B", 10, 0),
		rec(day(1), "S", "crit", "A", 200*mb, 0),
		rec(day(1), "T", "crit", "A", 250*mb, 0),
		rec(day(1), "", "crit", "A", 900*mb, 0),
	}

	got := Cleanup(records)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}
	if got[0].Server != "T" || got[0].Status != zone.Critical {
		t.Errorf("[0] = %+v", got[0])
	}
	if got[1].Model != "crit" || got[1].Status != zone.Critical {
		t.Errorf("[1] = %+v", got[1])
	}
	warn := got[2]
	if warn.Model != "warn" || warn.Status != zone.Warning || warn.SyncCount != 2 || warn.Users != 2 {
		t.Errorf("[2] = %+v", warn)
	}
	if warn.LastSync == nil || !warn.LastSync.Equal(day(2)) {
		t.Errorf("LastSync = %v", warn.LastSync)
	}

	if got := Cleanup(nil); got == nil || len(got) != 0 {
		t.Errorf("Cleanup(nil) = %v, want empty slice", got)
	}
}

func TestSummarize(t *testing.T) {
	all := []models.Record{
		rec(day(5), "S1", "m1", "A", 1*1024*mb, 0),
		rec(day(2), "S2", "m2", "B", 2*1024*mb, 0),
		rec(time.Time{}, "S2", "m2", "", 7, 0),
		rec(day(9), "", "m3", "C", 100, 0),
	}
	filtered := all[:3]

	s := Summarize(all, filtered)
	if s.TotalRecords != 4 || s.ValidDates != 3 || s.InvalidDates != 1 {
		t.Errorf("date counts = %d/%d/%d", s.TotalRecords, s.ValidDates, s.InvalidDates)
	}
	if s.FilteredRecords != 3 || s.UniqueUsers != 2 || s.UniqueServers != 2 || s.UniqueModels != 2 {
		t.Errorf("unique = %+v", s)
	}
	if s.Earliest == nil || !s.Earliest.Equal(day(2)) || s.Latest == nil || !s.Latest.Equal(day(9)) {
		t.Errorf("range = %v..%v", s.Earliest, s.Latest)
	}
	if len(s.ServerVolumes) != 2 || s.ServerVolumes[0].Server != "S2" || s.ServerVolumes[0].Bytes != 2*1024*mb+7 {
		t.Errorf("volumes = %+v", s.ServerVolumes)
	}
	if s.SupportBytes != 3*1024*mb+7 {
		t.Errorf("SupportBytes = %d", s.SupportBytes)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)
	if s.TotalRecords != 0 || s.Earliest != nil || s.ServerVolumes == nil {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestOptions(t *testing.T) {
	opts := Options([]models.Record{
		rec(day(1), "S2", "b", "A", 0, 0),
		rec(day(1), "S1", "z", "A", 0, 0),
		rec(day(1), "S1", "a", "A", 0, 0),
		rec(day(1), "S1", "a", "A", 0, 0),
		rec(day(1), "S3", "", "A", 0, 0),
	})

	if len(opts.Servers) != 2 || opts.Servers[0] != "S1" || opts.Servers[1] != "S2" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if m := opts.Models["S1"]; len(m) != 2 || m[0] != "a" || m[1] != "z" {
		t.Errorf("S1 models = %v", m)
	}
}

func TestEndToEnd(t *testing.T) {
	text := "Date (UTC)\tСервер\tИмя файла\tUser\tSupportSize (байты)\tModelSize (байты)\n" +
		"1 января 2024 10:00:00\tS1\tProj_Type_MINS_АР1.rvt\tA\t1048576\t100\n" +
		"2 января 2024 11:00:00\tS1\tProj_Type_MINS_АР1.rvt\tA\t2097152\t200\n"

	n := parser.NewNormalizer(models.DefaultColumns(), nil)
	records := n.NormalizeTable(parser.ParseTSV(text), "activity.tsv")

	users := Users(records)
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	a := users[0]
	if a.User != "A" || a.SyncCount != 2 || a.UniqueDays != 2 || a.TotalBytes != 3145728 {
		t.Errorf("A = %+v", a)
	}
	if got := models.BytesToMB(float64(a.TotalBytes)); got != "3.00" {
		t.Errorf("total MB = %s, want 3.00", got)
	}

	projects := Projects(records, ProjectSortSyncs)
	if len(projects) != 1 || projects[0].Name != "MINS" {
		t.Fatalf("projects = %+v", projects)
	}
	if projects[0].Sections[0].Section != modelname.SectionAR {
		t.Errorf("section = %s, want АР", projects[0].Sections[0].Section)
	}

	servers := Servers(records)
	if servers[0].TotalModelBytes != 200 || servers[0].SupportBytes != 3145728 {
		t.Errorf("server = %+v", servers[0])
	}
}
