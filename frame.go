package codec2

import (
	"github.com/sirupsen/logrus"
)

const (
	// berMuteThreshold is the bit error rate above which DecodeBER mutes.
	berMuteThreshold = 0.15
	// berMuteEnergyIndex is the EBits energy index used while muted.
	berMuteEnergyIndex = 10
)

// analyseLsps computes the LPC energy and LSPs of the current analysis
// buffer, substituting a benign LSP vector when the root search fails.
func (c *Codec2) analyseLsps() (float64, []float64) {
	e, lsp, ok := speechToUQLSPS(c.sn, c.w, c.cfg.lpcOrder)
	if !ok {
		c.stats.LspFallbacks++
		c.log.WithFields(logrus.Fields{
			"frame":  c.stats.Frames,
			"energy": e,
		}).Debug("LSP root search failed, using fallback")
	}
	return e, lsp
}

// encodeFrame analyses each 10 ms subframe of pcm in turn and packs the
// voicing bits, the Wo/energy updates and finally the LSPs of the last
// subframe.
func (c *Codec2) encodeFrame(pcm []int16) []byte {
	cfg := c.cfg
	nSamp := c.c2const.NSamp
	bw := newBitWriter(make([]byte, c.BytesPerFrame()))
	speech := make([]float64, nSamp)

	var (
		model  Model
		lsp    []float64
		prevWo float64
		packed int // voicing bits already packed
	)
	voicing := make([]bool, cfg.subframes)
	for i := 0; i < cfg.subframes; i++ {
		for j := range speech {
			speech[j] = float64(pcm[i*nSamp+j])
		}
		c.analyseOneFrame(speech, &model)
		c.setState(StateAnalysing, i, &model, 0)
		voicing[i] = model.Voiced

		u, ok := cfg.isUpdate(i)
		if !ok {
			continue
		}
		for ; packed <= i; packed++ {
			bw.pack(boolToInt(voicing[packed]), 1)
		}

		var e float64
		e, lsp = c.analyseLsps()
		c.setState(StateQuantising, i, &model, e)

		switch cfg.woe[u] {
		case woeScalar:
			idx := encodeWo(&c.c2const, model.Wo, WoBits)
			bw.pack(idx, WoBits)
			bw.pack(encodeEnergy(e, EBits), EBits)
			prevWo = decodeWo(&c.c2const, idx, WoBits)
		case woeDelta:
			idx := encodeWoDt(&c.c2const, model.Wo, prevWo)
			bw.pack(idx, WoDtBits)
			bw.pack(encodeEnergy(e, EBits), EBits)
			prevWo = decodeWoDt(&c.c2const, idx, prevWo)
		case woeJoint:
			bw.pack(encodeWoE(&model, e, &c.xqEnc), WoEBits)
		}
	}

	widths := cfg.lsp.bits()
	lspIdx, se := cfg.lsp.encode(lsp)
	for i, idx := range lspIdx {
		bw.pack(idx, uint(widths[i]))
	}
	c.stats.LspSqErr += se
	bw.pack(0, uint(cfg.spare))

	c.stats.Frames++
	c.setState(StatePacked, -1, nil, 0)
	c.setState(StateIdle, -1, nil, 0)
	return bw.buf
}

// decodeFrame unpacks a frame, dequantises the transmitted subframes,
// interpolates the others and synthesises them all.
func (c *Codec2) decodeFrame(bits []byte, ber float64) []int16 {
	cfg := c.cfg
	n := cfg.subframes
	order := cfg.lpcOrder
	nSamp := c.c2const.NSamp
	br := newBitReader(bits)

	models := make([]Model, n)
	energy := make([]float64, n)
	woIdx := make([]int, len(cfg.updates))
	eIdx := make([]int, len(cfg.updates))

	unpacked := 0
	for u, sf := range cfg.updates {
		for ; unpacked <= sf; unpacked++ {
			models[unpacked].Voiced = br.unpack(1) == 1
		}
		switch cfg.woe[u] {
		case woeScalar:
			woIdx[u] = br.unpack(WoBits)
			eIdx[u] = br.unpack(EBits)
		case woeDelta:
			woIdx[u] = br.unpack(WoDtBits)
			eIdx[u] = br.unpack(EBits)
		case woeJoint:
			woIdx[u] = br.unpack(WoEBits)
		}
	}
	widths := cfg.lsp.bits()
	lspIdx := make([]int, len(widths))
	for i, w := range widths {
		lspIdx[i] = br.unpack(uint(w))
	}
	c.setState(StateUnpacked, -1, nil, 0)

	// Dequantise the updates. Every decoder clamps Wo and energy, so a
	// corrupted index cannot leave the valid range.
	prevWo := c.prevModelDec.Wo
	for u, sf := range cfg.updates {
		var wo, e float64
		switch cfg.woe[u] {
		case woeScalar:
			wo = decodeWo(&c.c2const, woIdx[u], WoBits)
			e = decodeEnergy(eIdx[u], EBits)
		case woeDelta:
			wo = decodeWoDt(&c.c2const, woIdx[u], prevWo)
			e = decodeEnergy(eIdx[u], EBits)
		case woeJoint:
			wo, e = decodeWoE(&c.c2const, woIdx[u], &c.xqDec)
		}
		models[sf].setWo(wo)
		energy[sf] = e
		prevWo = wo
	}

	lsps := make([][]float64, n)
	for i := range lsps {
		lsps[i] = make([]float64, order)
	}
	cfg.lsp.decode(lspIdx, lsps[n-1])
	if checkLspOrder(lsps[n-1], order) > 0 {
		c.stats.LspReorders++
	}
	bwExpandLsps(lsps[n-1], order)
	c.setState(StateDequantising, n-1, &models[n-1], energy[n-1])

	if ber > berMuteThreshold {
		for i := range models {
			models[i].Voiced = false
		}
	}

	// Fill in the subframes between updates. The previous frame's last
	// subframe acts as update -1.
	last := -1
	for i := 0; i < n; i++ {
		if _, ok := cfg.isUpdate(i); ok {
			last = i
			continue
		}
		next := i + 1
		for ; next < n; next++ {
			if _, ok := cfg.isUpdate(next); ok {
				break
			}
		}
		prev, prevE := &c.prevModelDec, c.prevEDec
		if last >= 0 {
			prev, prevE = &models[last], energy[last]
		}
		weight := float64(i-last) / float64(next-last)
		interpWo2(&models[i], prev, &models[next], weight, c.c2const.WoMin)
		energy[i] = interpEnergy2(prevE, energy[next], weight)
	}
	for i := 0; i < n-1; i++ {
		interpolateLsp(lsps[i], c.prevLspsDec, lsps[n-1], float64(i+1)/float64(n))
	}
	if ber > berMuteThreshold {
		muted := decodeEnergy(berMuteEnergyIndex, EBits)
		for i := range energy {
			energy[i] = muted
		}
	}
	c.setState(StateInterpolating, -1, nil, 0)

	pcm := make([]int16, n*nSamp)
	ak := make([]float64, order+1)
	for i := 0; i < n; i++ {
		LspToLpc(lsps[i], ak, order)
		_, Aw := aksToM2(c.fft, ak, order, &models[i], energy[i], c.pf)
		applyLpcCorrection(&models[i])
		c.setState(StateSynthesising, i, &models[i], energy[i])
		c.synthesiseOneFrame(&models[i], pcm[i*nSamp:(i+1)*nSamp], Aw, 1.0)
	}

	c.prevModelDec = models[n-1]
	copy(c.prevLspsDec, lsps[n-1])
	c.prevEDec = energy[n-1]

	c.stats.Frames++
	c.setState(StateIdle, -1, nil, 0)
	return pcm
}
