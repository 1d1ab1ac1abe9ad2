package generator

import (
	"strconv"

	"github.com/arloliu/go-astm/astm"
)

// analyte is one result record template of the blood gas panel.
type analyte struct {
	code   string // universal test ID component, e.g. "tHb^M"
	unit   string
	lo, hi float64
}

// bloodGasPanel lists the results reported per patient, in record order.
var bloodGasPanel = []analyte{
	{code: "tHb^M", unit: "g/dL", lo: 2, hi: 30},
	{code: "O2Hb^M", unit: "%", lo: 75, hi: 125},
	{code: "COHb^M", unit: "%", lo: 0, hi: 2},
	{code: "MetHb^M", unit: "%", lo: 2, hi: 7},
	{code: "O2Ct^C", unit: "mL/dL", lo: 20, hi: 35},
	{code: "O2Cap^C", unit: "mL/dL", lo: 20, hi: 35},
	{code: "sO2^C", unit: "%", lo: 50, hi: 100},
}

// orderLookbackDays bounds the random order timestamps.
const orderLookbackDays = 7

// ResultsMessage builds an ASTM E1394 result upload: a header record, then for each
// patient a patient, an order and seven result records, then the terminator record.
// patients below 1 yields a message without patient records.
func (g *Generator) ResultsMessage(patients int) *astm.Message {
	msg := astm.NewMessage()
	msg.AddLine(`H|\^&|||^^11223344|||||IDMS||P|1|` + g.CurrentDate())

	for i := 0; i < patients; i++ {
		msg.AddLine("P|1||555")
		msg.AddLine("O|1||171|^^^|||" + g.RandomDateInPastDays(orderLookbackDays) + "|||")

		for seq, a := range bloodGasPanel {
			value := strconv.FormatFloat(g.uniform(a.lo, a.hi), 'f', -1, 64)
			msg.AddLine("R|" + strconv.Itoa(seq+1) + "|^^^" + a.code + "|" + value + "|" + a.unit + "||||R")
		}
	}

	msg.AddLine("L|1|N")

	return msg
}
