package engine

import "github.com/visiona/camrx/internal/hwreg"

// Register map of the capture peripheral. Byte offsets into the
// memory-mapped window; all registers are 32 bits wide.
const (
	regCtrl  = 0x000 // receiver control
	regSta   = 0x004 // receiver status (write back to clear)
	regAna   = 0x008 // analogue front-end control
	regPri   = 0x00c // AXI priority / QoS
	regClk   = 0x010 // clock lane control
	regClt   = 0x014 // clock lane timing
	regDat0  = 0x018 // data lane 0 control
	regDat1  = 0x01c
	regDat2  = 0x020 // only wired on >2 lane instances
	regDat3  = 0x024
	regDlt   = 0x028 // data lane timing
	regCmp0  = 0x02c // packet compare 0
	regIctl  = 0x100 // image interrupt control
	regIsta  = 0x104 // image interrupt status (write back to clear)
	regIdi0  = 0x108 // image data identifier
	regIpipe = 0x10c // pack/unpack pipeline
	regIbsa0 = 0x110 // image buffer 0 start address
	regIbea0 = 0x114 // image buffer 0 end address
	regIbls  = 0x118 // image buffer line stride
	regIbwp  = 0x11c // image buffer write pointer (read only)
	regIhwin = 0x120 // horizontal window
	regIhsta = 0x124 // detected horizontal resolution (read only)
	regIvwin = 0x128 // vertical window
	regIvsta = 0x12c // detected vertical resolution (read only)
	regDcs   = 0x150 // embedded data control
	regMisc  = 0x160 // miscellaneous control
)

// regCtrl fields.
const (
	ctrlCPE     = hwreg.Field(0x00000001) // peripheral enable
	ctrlMEM     = hwreg.Field(0x00000002) // write output to memory
	ctrlCPM     = hwreg.Field(0x00000004) // peripheral mode: 0 packet, 1 strobe
	ctrlSOE     = hwreg.Field(0x00000008) // shut down output engine
	ctrlDCM     = hwreg.Field(0x00000030) // data/clock mode
	ctrlPFT     = hwreg.Field(0x00000f00) // packet framer timeout
	ctrlOET     = hwreg.Field(0x001ff000) // output engine timeout
	ctrlCPR     = hwreg.Field(0x00200000) // peripheral reset
)

const (
	cpmPacket = 0 // packet-based multi-lane transport (CSI-2)
	cpmStrobe = 1 // strobe-based legacy transport (CCP2)

	dcmStrobe = 0
)

// regSta bits.
const (
	staIS  = 0x00004000 // interrupt summary
	staPI0 = 0x00008000 // panic/line interrupt coincident with frame end
	staAll = 0x0000ffff // write-1-to-clear set
)

// regIsta bits.
const (
	istaFS  = 0x00000001 // frame start
	istaFE  = 0x00000002 // frame end
	istaLCI = 0x00000004 // line count interrupt
	istaAll = 0x00000007
)

// regIctl fields.
const (
	ictlFSIE = hwreg.Field(0x00000001) // frame start interrupt enable
	ictlFEIE = hwreg.Field(0x00000002) // frame end interrupt enable
	ictlFCM  = hwreg.Field(0x00000008) // frame capture mode (triggered)
	ictlTFC  = hwreg.Field(0x00000010) // trigger frame capture
	ictlLIP  = hwreg.Field(0x00000060) // load image pointers
	ictlLCIE = hwreg.Field(0x1fff0000) // line count interrupt frequency
)

// regAna fields.
const (
	anaAPD     = hwreg.Field(0x00000001) // analogue power down
	anaAR      = hwreg.Field(0x00000004) // analogue reset
	anaDDL     = hwreg.Field(0x00000008) // disable digital lanes
	anaCTATADJ = hwreg.Field(0x000000f0) // CTAT bias trim
	anaPTATADJ = hwreg.Field(0x00000f00) // PTAT bias trim
)

// regPri fields.
const (
	priPE = hwreg.Field(0x00000001) // priority enable
	priPT = hwreg.Field(0x00000006) // panic threshold
	priNP = hwreg.Field(0x000000f0) // normal priority
	priPP = hwreg.Field(0x00000f00) // panic priority
	priBS = hwreg.Field(0x0000f000) // burst spacing
	priBL = hwreg.Field(0x00030000) // burst length
)

// Lane control fields, shared layout between the clock lane register and the
// four data lane registers.
const (
	laneEnable  = hwreg.Field(0x00000001)
	laneLPE     = hwreg.Field(0x00000004) // low-power termination enable
	laneTRE     = hwreg.Field(0x00000008) // termination resistor enable
	laneHSE     = hwreg.Field(0x00000010) // high-speed termination enable
)

// Lane timing fields.
const (
	cltTermEn = hwreg.Field(0x000000ff) // tclk_term_en
	cltSettle = hwreg.Field(0x0000ff00) // tclk_settle

	dltTermEn = hwreg.Field(0x000000ff) // td_term_en
	dltSettle = hwreg.Field(0x0000ff00) // ths_settle
	dltRxEn   = hwreg.Field(0x00ff0000) // trx_enable
)

// regIpipe fields.
const (
	ipipePUM  = hwreg.Field(0x00000007) // unpack mode
	ipipePPM  = hwreg.Field(0x00000038) // pack mode
	ipipeDEBL = hwreg.Field(0x00001c00) // data endianness / burst length
)

// Unpack modes (ipipePUM values).
const (
	pumNone     = 0
	pumUnpack8  = 3
	pumUnpack10 = 4
	pumUnpack12 = 5
	pumUnpack14 = 6
	pumUnpack16 = 7
)

// Pack modes (ipipePPM values).
const (
	ppmNone   = 0
	ppmPack16 = 6
)

// regCmp0 fields.
const (
	cmpPCDT = hwreg.Field(0x0000003f) // packet compare data type
	cmpPCVC = hwreg.Field(0x000000c0) // packet compare virtual channel
	cmpCPH  = hwreg.Field(0x00000100) // compare packet header
	cmpGI   = hwreg.Field(0x00000200) // generate interrupt
	cmpPCE  = hwreg.Field(0x80000000) // packet compare enable
)

// regDcs fields.
const (
	dcsEDL = hwreg.Field(0x0000ff00) // embedded data lines
)

// regMisc fields.
const (
	miscFL0 = hwreg.Field(0x00000040) // FIFO flush on frame end
	miscFL1 = hwreg.Field(0x00000200)
)

// The lane clock gate is a single register outside the main window, guarded
// by a password in the top byte.
const clkGatePassword = 0x5a000000
