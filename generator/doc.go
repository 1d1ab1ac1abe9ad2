// Package generator produces canned test traffic: ASTM E1394 result messages from a
// blood gas analyser and HL7 ADT messages (admit, merge, bed swap).
//
// The content is realistic enough to exercise a receiving LIS/HIS interface, it is not
// a data model of the records. Random values and dates come from a seedable source and
// an injectable clock, so a fixed seed and clock reproduce a message byte for byte.
package generator
