package rtcp

import "fmt"

type Parser struct {
	log ILogger
}

type Dependencies struct {
	Logger ILogger
}

func NewParser(dep Dependencies) *Parser {
	parser := new(Parser)
	parser.log = dep.Logger
	return parser
}

/*
 * Parse decodes a compound RTCP packet into its constituent sub-packets.
 * Only SR/RR/SDES/BYE/APP are understood; anything else is rejected by
 * PacketRTCP.Parse before it ever reaches the switch below.
 */
func (p *Parser) Parse(input IPacket) ([]interface{}, error) {
	var packets []interface{}
	var err error

	data := input.GetData()
	for {
		packet := NewPacket()
		packet.SetData(data)
		packetRTCP := NewPacketRTCP()
		err = packetRTCP.Parse(packet)
		if err != nil {
			p.log.Errorf("[RTCP]: %s", err.Error())
			return packets, err
		}
		switch packetRTCP.Header.PacketType {
		case PT_SR:
			packetSR := NewPacketSR()
			if err = packetSR.ParsePacketRTCP(packetRTCP); err != nil {
				p.log.Errorf("[RTCP]: cannot parse SR, err=%s", err.Error())
				return packets, err
			}
			p.log.Infof("%s", packetSR)
			packets = append(packets, packetSR)
		case PT_RR:
			packetRR := NewPacketRR()
			if err = packetRR.ParsePacketRTCP(packetRTCP); err != nil {
				p.log.Errorf("[RTCP]: cannot parse RR, err=%s", err.Error())
				return packets, err
			}
			p.log.Infof("%s", packetRR)
			packets = append(packets, packetRR)
		case PT_SDES:
			packetSDES := NewPacketSDES()
			if err = packetSDES.ParsePacketRTCP(packetRTCP); err != nil {
				p.log.Errorf("[RTCP]: cannot parse SDES, err=%s", err.Error())
				return packets, err
			}
			p.log.Infof("%s", packetSDES)
			packets = append(packets, packetSDES)
		case PT_BYE:
			packetBYE := NewPacketBYE()
			if err = packetBYE.ParsePacketRTCP(packetRTCP); err != nil {
				p.log.Errorf("[RTCP]: cannot parse BYE, err=%s", err.Error())
				return packets, err
			}
			p.log.Infof("%s", packetBYE)
			packets = append(packets, packetBYE)
		case PT_APP:
			packetAPP := NewPacketAPP()
			if err = packetAPP.ParsePacketRTCP(packetRTCP); err != nil {
				p.log.Errorf("[RTCP]: cannot parse APP, err=%s", err.Error())
				return packets, err
			}
			p.log.Infof("%s", packetAPP)
			packets = append(packets, packetAPP)
		default:
			p.log.Warnf("[RTCP]: unhandled packet type %d", packetRTCP.Header.PacketType)
		}
		if packetRTCP.GetSize() > len(data) {
			return packets, fmt.Errorf("%w: last packet overflow", ErrTruncated)
		}
		data = data[packetRTCP.GetSize():]
		if len(data) == 0 {
			break
		}
	}
	return packets, nil
}
