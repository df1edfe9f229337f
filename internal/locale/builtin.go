package locale

import "time"

var englishDays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
var englishAbbrDays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
var englishMonths = [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
var englishAbbrMonths = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Invariant is the culture-neutral descriptor used when no locale is set.
var Invariant = Locale{
	Name:                  "invariant",
	DayNames:              englishDays,
	AbbreviatedDayNames:   englishAbbrDays,
	MonthNames:            englishMonths,
	AbbreviatedMonthNames: englishAbbrMonths,
	FirstDayOfWeek:        time.Sunday,
	WeekRule:              FirstDay,
	YearMonthPattern:      "yyyy MMMM",
	ShortDatePattern:      "MM/dd/yyyy",
}

var builtin = map[string]Locale{
	"invariant": Invariant,
	"en-us": {
		Name:                  "en-US",
		DayNames:              englishDays,
		AbbreviatedDayNames:   englishAbbrDays,
		MonthNames:            englishMonths,
		AbbreviatedMonthNames: englishAbbrMonths,
		FirstDayOfWeek:        time.Sunday,
		WeekRule:              FirstDay,
		YearMonthPattern:      "MMMM yyyy",
		ShortDatePattern:      "M/d/yyyy",
	},
	"en-gb": {
		Name:                  "en-GB",
		DayNames:              englishDays,
		AbbreviatedDayNames:   englishAbbrDays,
		MonthNames:            englishMonths,
		AbbreviatedMonthNames: englishAbbrMonths,
		FirstDayOfWeek:        time.Monday,
		WeekRule:              FirstFourDayWeek,
		YearMonthPattern:      "MMMM yyyy",
		ShortDatePattern:      "dd/MM/yyyy",
	},
	"de-de": {
		Name:                  "de-DE",
		DayNames:              [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		AbbreviatedDayNames:   [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		MonthNames:            [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		AbbreviatedMonthNames: [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
		FirstDayOfWeek:        time.Monday,
		WeekRule:              FirstFourDayWeek,
		YearMonthPattern:      "MMMM yyyy",
		ShortDatePattern:      "dd.MM.yyyy",
	},
	"fr-fr": {
		Name:                  "fr-FR",
		DayNames:              [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		AbbreviatedDayNames:   [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		MonthNames:            [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		AbbreviatedMonthNames: [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		FirstDayOfWeek:        time.Monday,
		WeekRule:              FirstFourDayWeek,
		YearMonthPattern:      "MMMM yyyy",
		ShortDatePattern:      "dd/MM/yyyy",
	},
	"ko-kr": {
		Name:                  "ko-KR",
		DayNames:              [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"},
		AbbreviatedDayNames:   [7]string{"일", "월", "화", "수", "목", "금", "토"},
		MonthNames:            [12]string{"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
		AbbreviatedMonthNames: [12]string{"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
		FirstDayOfWeek:        time.Sunday,
		WeekRule:              FirstDay,
		YearMonthPattern:      "yyyy'년' M'월'",
		ShortDatePattern:      "yyyy. M. d.",
	},
	"ja-jp": {
		Name:                  "ja-JP",
		DayNames:              [7]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"},
		AbbreviatedDayNames:   [7]string{"日", "月", "火", "水", "木", "金", "土"},
		MonthNames:            [12]string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"},
		AbbreviatedMonthNames: [12]string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"},
		FirstDayOfWeek:        time.Sunday,
		WeekRule:              FirstDay,
		YearMonthPattern:      "yyyy'年'M'月'",
		ShortDatePattern:      "yyyy/MM/dd",
	},
}
