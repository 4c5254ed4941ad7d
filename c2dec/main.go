package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	codec2 "github.com/gnuradio/gnuradio-sub000"
	"github.com/sirupsen/logrus"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-mode 3200|2400|1600|1400|1300|1200] [-ber BER] [-trace] InputBitFile OutputRawFile\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (headerless)    %s -mode 1200 input.bin output.raw\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (with header)   %s input.c2 output.raw\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	modeName := flag.String("mode", "3200", "coding mode of headerless input (bit rate)")
	ber := flag.Float64("ber", 0, "channel bit error rate estimate passed to the decoder")
	trace := flag.Bool("trace", false, "log every codec state transition")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
	}
	inputFile, outputFile := flag.Arg(0), flag.Arg(1)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose || *trace {
		log.SetLevel(logrus.DebugLevel)
	}

	var input []byte
	var err error
	if inputFile == "-" {
		input, err = io.ReadAll(os.Stdin)
	} else {
		input, err = os.ReadFile(inputFile)
	}
	if err != nil {
		log.Fatalf("Error reading input: %v", err)
	}

	mode, err := codec2.ParseMode(*modeName)
	if err != nil {
		log.Fatalf("Error parsing mode: %v", err)
	}
	// A c2 header overrides -mode.
	data := input
	if codec2.IsC2Header(input) {
		_, mode, err = codec2.ParseHeader(input)
		if err != nil {
			log.Fatalf("Error: header %X: %v", input[:codec2.HeaderSize], err)
		}
		data = input[codec2.HeaderSize:]
	}

	opts := []codec2.Option{codec2.WithLogger(log)}
	if *trace {
		opts = append(opts, codec2.WithTraceSink(codec2.LogTraceSink(log)))
	}
	codec, err := codec2.New(mode, opts...)
	if err != nil {
		log.Fatalf("Error creating codec: %v", err)
	}
	defer codec.Close()

	frameSize := codec.BytesPerFrame()
	decoded := make([]byte, 0, len(data)/frameSize*codec.SamplesPerFrame()*2)
	for i := 0; i+frameSize <= len(data); i += frameSize {
		pcm, err := codec.DecodeBER(data[i:i+frameSize], *ber)
		if err != nil {
			log.Fatalf("Error decoding frame %d: %v", i/frameSize+1, err)
		}
		for _, s := range pcm {
			decoded = binary.LittleEndian.AppendUint16(decoded, uint16(s))
		}
	}

	var out io.Writer = os.Stdout
	if outputFile != "-" {
		f, err := os.Create(outputFile)
		if err != nil {
			log.Fatalf("Error creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(decoded); err != nil {
		log.Fatalf("Error writing output: %v", err)
	}

	log.WithFields(logrus.Fields{
		"mode":   mode.String(),
		"frames": len(data) / frameSize,
	}).Debug("decode complete")
}
