package crazyflie

import (
	"bytes"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/mikehamer/crazypilot/crtp"
)

// The bootloader always listens on channel 0.
const BootloaderChannel = 0

const (
	defaultFlashTimeout = 100 * time.Millisecond
	defaultFlashRetries = 20
	defaultRebootSettle = 500 * time.Millisecond
)

// Image is firmware for one CPU.
type Image struct {
	Target TargetCPU
	Data   []byte
}

// Retarget moves the link to the bootloader at address, or back to the
// copter's own firmware when toBootloader is false.
type Retarget func(toBootloader bool, address uint64) error

// Flasher rewrites a copter's firmware through its radio bootloader.
type Flasher struct {
	cf       *Crazyflie
	retarget Retarget

	// Verify reads every image back after writing it.
	Verify bool
	// Progress, when set, is called after every batch of pages written.
	Progress func(target TargetCPU, written, total int)

	Timeout time.Duration // per bootloader reply
	Retries int           // requests sent before giving up
	Settle  time.Duration // wait after a reboot
}

func NewFlasher(cf *Crazyflie, retarget Retarget) *Flasher {
	return &Flasher{
		cf:       cf,
		retarget: retarget,
		Timeout:  defaultFlashTimeout,
		Retries:  defaultFlashRetries,
		Settle:   defaultRebootSettle,
	}
}

// Flash reboots into the bootloader, writes every image and reboots into the
// new firmware. On error the copter is left in the bootloader.
func (f *Flasher) Flash(images ...Image) error {
	if err := f.RebootToBootloader(); err != nil {
		return err
	}
	for _, image := range images {
		if err := f.flashImage(image); err != nil {
			return errors.Wrapf(err, "flashing %s", image.Target)
		}
	}
	return f.RebootToFirmware()
}

func (f *Flasher) RebootToBootloader() error {
	address, err := f.reboot(false)
	if err != nil {
		return err
	}
	log.Printf("crazyflie: bootloader on 0x%X", address)
	return f.retarget(true, address)
}

func (f *Flasher) RebootToFirmware() error {
	if _, err := f.reboot(true); err != nil {
		return err
	}
	return f.retarget(false, 0)
}

func (f *Flasher) reboot(toFirmware bool) (uint64, error) {
	response := &BootloaderResponseAddress{}
	if err := f.request(&BootloaderRequestResetInit{}, response); err != nil {
		return 0, err
	}
	if err := f.cf.sendAll(&BootloaderRequestReset{ToFirmware: toFirmware}); err != nil {
		return 0, err
	}
	time.Sleep(f.Settle)
	return response.NewAddress, nil
}

// request sends req until a reply decodes into resp.
func (f *Flasher) request(req crtp.Request, resp crtp.Response) error {
	received, stop := f.cf.awaitResponse(resp)
	defer stop()

	for attempt := 0; attempt < f.Retries; attempt++ {
		if err := f.cf.PacketSend(req); err != nil {
			return err
		}
		select {
		case <-received:
			return nil
		case <-time.After(f.Timeout):
		}
	}
	return ErrorNoResponse
}

func (f *Flasher) flashImage(image Image) error {
	info := &FlashResponseGetInfo{Target: image.Target}
	if err := f.request(&FlashRequestGetInfo{Target: image.Target}, info); err != nil {
		return err
	}
	if info.PageSize <= 0 || info.NumBuffPages <= 0 {
		return ErrorBootloaderInfo
	}
	if len(image.Data) > info.Capacity() {
		return ErrorFlashDataTooLarge
	}

	data := image.Data
	flashPage := info.StartFlashPage
	for written := 0; written < len(data); {
		// fill as many buffer pages as the bootloader has
		pages := 0
		batch := written
		for ; pages < info.NumBuffPages && batch < len(data); pages++ {
			n := min(info.PageSize, len(data)-batch)
			if err := f.loadBufferPage(image.Target, pages, data[batch:batch+n]); err != nil {
				return err
			}
			batch += n
		}

		if err := f.writeFlash(image.Target, flashPage, pages); err != nil {
			return errors.Wrapf(err, "page %d", flashPage)
		}
		flashPage += pages
		written = batch

		if f.Progress != nil {
			f.Progress(image.Target, written, len(data))
		}
	}

	if f.Verify {
		return f.verify(image, info)
	}
	return nil
}

func (f *Flasher) loadBufferPage(target TargetCPU, page int, data []byte) error {
	var packets []crtp.Request
	for offset := 0; offset < len(data); {
		p := &FlashRequestLoadBufferPage{Target: target, BufferPageNum: page, BufferPageIdx: offset}
		n := min(p.MaxDataSize(), len(data)-offset)
		p.Data = data[offset : offset+n]
		packets = append(packets, p)
		offset += n
	}
	return f.cf.sendAll(packets...)
}

// writeFlash commits the loaded buffer pages. The bootloader answers once it
// is done; until then it is polled for its status.
func (f *Flasher) writeFlash(target TargetCPU, flashPage, pages int) error {
	status := &FlashResponseStatus{Target: target}
	received, stop := f.cf.awaitResponse(status)
	defer stop()

	if err := f.cf.PacketSend(&FlashRequestWriteFlash{Target: target, FlashPage: flashPage, PageCount: pages}); err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		select {
		case <-received:
			if status.ErrorCode != 0 {
				return errors.Wrapf(ErrorFlashFailed, "error code %d", status.ErrorCode)
			}
			return nil
		case <-time.After(f.Timeout):
		}

		if attempt >= f.Retries {
			return ErrorNoResponse
		}
		if err := f.cf.PacketSend(&FlashRequestStatus{Target: target}); err != nil {
			return err
		}
	}
}

func (f *Flasher) verify(image Image, info *FlashResponseGetInfo) error {
	data := image.Data
	for address := 0; address < len(data); {
		read := &FlashResponseRead{
			Target:      image.Target,
			PageIndex:   info.StartFlashPage + address/info.PageSize,
			PageAddress: address % info.PageSize,
		}
		req := &FlashRequestRead{Target: image.Target, PageIndex: read.PageIndex, PageAddress: read.PageAddress}
		if err := f.request(req, read); err != nil {
			return err
		}
		if len(read.Data) == 0 {
			return errors.Wrapf(ErrorFlashVerify, "empty read at 0x%X", address)
		}

		n := min(len(read.Data), len(data)-address)
		if !bytes.Equal(read.Data[:n], data[address:address+n]) {
			return errors.Wrapf(ErrorFlashVerify, "at 0x%X", address)
		}
		address += n
	}
	return nil
}
