// Package dates berisi util tanggal kalender untuk siklus tagihan.
// Semua tanggal billing dinormalkan ke tengah malam UTC supaya
// perbandingan antar kolom DATE konsisten lintas zona waktu.
package dates

import "time"

// Day menormalkan waktu apa pun ke tanggal kalender (00:00 UTC).
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today mengembalikan tanggal kalender hari ini (UTC).
func Today() time.Time {
	return Day(time.Now())
}

// daysIn menghitung jumlah hari pada bulan m tahun y.
func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped menambah bulan dengan menjepit hari ke akhir bulan
// tujuan. Berbeda dengan AddDate yang menormalkan 31 Jan + 1 bulan
// menjadi 2/3 Maret, fungsi ini menghasilkan 28/29 Februari.
func AddMonthsClamped(t time.Time, months int) time.Time {
	t = Day(t)
	y, m, d := t.Date()

	total := int(m) - 1 + months
	ny := y + total/12
	nm := time.Month(total%12 + 1)
	if total < 0 {
		// Pembagian Go membulatkan ke nol, koreksi untuk bulan negatif.
		ny = y + (total-11)/12
		nm = time.Month((total%12+12)%12 + 1)
	}

	if max := daysIn(ny, nm); d > max {
		d = max
	}
	return time.Date(ny, nm, d, 0, 0, 0, 0, time.UTC)
}

// AddYearsClamped menambah tahun, menjepit 29 Feb ke 28 Feb bila perlu.
func AddYearsClamped(t time.Time, years int) time.Time {
	return AddMonthsClamped(t, years*12)
}

// AddDays menambah n hari kalender.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DaysBetween menghitung selisih hari kalender b - a (negatif bila b < a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Before melaporkan apakah tanggal kalender a < b.
func Before(a, b time.Time) bool {
	return Day(a).Before(Day(b))
}

// OnOrBefore melaporkan apakah tanggal kalender a <= b.
func OnOrBefore(a, b time.Time) bool {
	return !Day(a).After(Day(b))
}
