// Package domain models NOAA HURDAT2 best-track data.
//
// # Data Source
//
// HURDAT2 is the National Hurricane Center's historical hurricane database,
// published as a flat text file at https://www.nhc.noaa.gov/data/#hurdat.
// Each storm is a header line followed by a header-declared number of
// observation lines; the observation count is load-bearing, since observation
// lines carry no storm identifier of their own.
//
// # HURDAT2 Conventions
//
// Header line (3 comma-separated fields):
//
//	AL122007,              KAREN,     19,
//	^^                                     basin code   ("AL" = Atlantic)
//	  ^^                                   ATCF cyclone number within the year
//	    ^^^^                               year
//	          ^^^^^                        storm name, or "UNNAMED"
//	                          ^^           number of observation lines to follow
//
// Observation line (21 comma-separated fields):
//
//	20070926, 1200,, HU, 11.7N, 42.4W, 65, 988, 90, 60, 40, 45, 60, 40, 25, 30, 40, 30, 0, 15, -999
//
//	date (YYYYMMDD) and time (HHMM, UTC), combined into one timestamp;
//	record identifier, a single free-form letter (L = landfall, I = intensity
//	peak, ...) or empty; system status, one of the nine codes below;
//	latitude and longitude as "degrees + cardinal letter" ("11.7N", "42.4W");
//	maximum sustained wind (kt); minimum central pressure (mb); twelve wind
//	radii, the maximum extent (nmi) of 34/50/64 kt winds in the NE/SE/SW/NW
//	quadrants; and the radius of maximum wind (nmi).
//
// Status codes:
//
//	TD  tropical depression (< 34 kt)      SD  subtropical depression
//	TS  tropical storm (34-63 kt)          SS  subtropical storm
//	HU  hurricane (>= 64 kt)               LO  non-tropical low
//	EX  extratropical cyclone              WV  tropical wave
//	                                       DB  disturbance
//
// Missing values:
//
//	-999 (and -99 in some producer variants) means "not recorded". The typed
//	model maps both sentinels to nil, never to a literal negative number.
//
// Coordinates:
//
//	S and W suffixes negate; latitude outside [-90, 90] is rejected, while
//	longitude is renormalized into (-180, 180]. Some raw vintages carry
//	longitudes beyond 180 degrees west, hence the normalization.
package domain
